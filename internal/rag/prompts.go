package rag

// ragPromptTemplate takes the joined context blocks and the user question,
// in that order. The citation format it mandates is what the frontend
// parses out of the answer text.
const ragPromptTemplate = `You are an AI assistant helping venture capital investors analyze investment memos.

Context from documents:
%s

Question: %s

Provide a comprehensive answer based on the context above. Always cite your sources using the format [Document Name, Page X] after each claim. Be specific with numbers and data when available.

If the question cannot be answered from the provided context, say so explicitly.

Answer:`
