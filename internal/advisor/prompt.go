package advisor

import (
	"fmt"
	"strings"

	"StockAdvisor/internal/model"
)

// SystemRole is sent as the system message of every advice request.
const SystemRole = "You are a financial analyst providing investment advice."

// PromptInput carries the figures embedded in the advice prompt.
type PromptInput struct {
	Symbol1, Symbol2 string
	Price1, Price2   model.Value
	PE1, PE2         model.Value
	PB1, PB2         model.Value
}

// InputFromSnapshots builds the prompt input from two collected snapshots.
func InputFromSnapshots(a, b *model.StockSnapshot) PromptInput {
	return PromptInput{
		Symbol1: a.Symbol,
		Symbol2: b.Symbol,
		Price1:  a.LatestClose,
		Price2:  b.LatestClose,
		PE1:     a.Valuation.PERatio,
		PE2:     b.Valuation.PERatio,
		PB1:     a.Valuation.PBRatio,
		PB2:     b.Valuation.PBRatio,
	}
}

// BuildPrompt renders the fixed comparison prompt. Figures are embedded at
// full precision; missing ones appear as N/A.
func BuildPrompt(in PromptInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Compare the two stocks %s and %s based on:\n", in.Symbol1, in.Symbol2)
	fmt.Fprintf(&b, "- %s Current Price: %s\n", in.Symbol1, price(in.Price1))
	fmt.Fprintf(&b, "- %s Current Price: %s\n", in.Symbol2, price(in.Price2))
	fmt.Fprintf(&b, "- %s P/E Ratio: %s\n", in.Symbol1, in.PE1.Exact())
	fmt.Fprintf(&b, "- %s P/E Ratio: %s\n", in.Symbol2, in.PE2.Exact())
	fmt.Fprintf(&b, "- %s P/B Ratio: %s\n", in.Symbol1, in.PB1.Exact())
	fmt.Fprintf(&b, "- %s P/B Ratio: %s\n", in.Symbol2, in.PB2.Exact())
	b.WriteString("Provide a detailed investment recommendation.")
	return b.String()
}

func price(v model.Value) string {
	if !v.Valid() {
		return v.Exact()
	}
	return "$" + v.Exact()
}
