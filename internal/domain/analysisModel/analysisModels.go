package analysisModel

import "context"

type ResultStatus string

const (
	ResultStatusPending    ResultStatus = "pending"
	ResultStatusGenerating ResultStatus = "generating"
	ResultStatusCompleted  ResultStatus = "completed"
	ResultStatusError      ResultStatus = "error"
)

type Founder struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Background string `json:"background"`
}

type Financials struct {
	Revenue   string `json:"revenue"`
	BurnRate  string `json:"burn_rate"`
	Runway    string `json:"runway"`
	Valuation string `json:"valuation"`
}

type TAM struct {
	TotalAddressableMarket string `json:"total_addressable_market"`
	ServiceableMarket      string `json:"serviceable_market"`
}

type Traction struct {
	Metrics    []string `json:"metrics"`
	GrowthRate string   `json:"growth_rate"`
	Milestones []string `json:"milestones"`
}

type Ask struct {
	Amount     string   `json:"amount"`
	UseOfFunds []string `json:"use_of_funds"`
}

// ExtractionResult is the structured record pulled out of one memo.
// Cached per document; regeneration overwrites the previous entry.
type ExtractionResult struct {
	DocId         string       `json:"doc_id"`
	CompanyName   string       `json:"company_name"`
	Pitch         string       `json:"pitch"`
	Founders      []Founder    `json:"founders"`
	BusinessModel string       `json:"business_model"`
	Financials    Financials   `json:"financials"`
	TAM           TAM          `json:"tam"`
	Traction      Traction     `json:"traction"`
	Competitors   []string     `json:"competitors"`
	Ask           Ask          `json:"ask"`
	Risks         []string     `json:"risks"`
	Status        ResultStatus `json:"status"`
	ErrorMessage  string       `json:"error_message,omitempty"`
}

type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type FAQResult struct {
	DocId        string       `json:"doc_id"`
	DocName      string       `json:"doc_name"`
	FAQs         []FAQItem    `json:"faqs"`
	Status       ResultStatus `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
}

type ResultStore interface {
	SaveExtraction(ctx context.Context, result ExtractionResult) error
	GetExtraction(ctx context.Context, docId string) (ExtractionResult, bool)
	SaveFAQ(ctx context.Context, result FAQResult) error
	GetFAQ(ctx context.Context, docId string) (FAQResult, bool)
	DeleteResults(ctx context.Context, docId string) error
}
