package advisor

import (
	"fmt"
	"strings"
)

// SystemPrompt frames every explanation as educational material for retail investors.
const SystemPrompt = `あなたは個人投資家向けの教育的なAIアドバイザーです。

ルール:
- 日本語で回答する
- 初心者にわかりやすい平易な表現を使う
- 具体的な売買タイミングの指示は絶対にしない
- リスクについて必ず言及する
- 「教育目的であり投資助言ではない」旨を適宜伝える
- ポートフォリオの配分理由を論理的に説明する
- 専門用語には簡単な説明を添える
`

const explainTemplate = `以下のポートフォリオについて、個人投資家向けにわかりやすく説明してください。

**戦略**: %s
**リスク許容度**: %s

**配分**:
%s

**指標**:
%s

説明には以下を含めてください:
1. 配分の考え方（なぜこの配分なのか）
2. リスクについて（想定される下落幅など）
3. 重要な注意点（教育目的であり投資助言ではない旨）

Markdown形式で回答してください。
`

const noMetrics = "なし"

// Allocation is one line of the portfolio being explained
type Allocation struct {
	Symbol string  `json:"symbol"`
	NameJA string  `json:"name_ja,omitempty"`
	Weight float64 `json:"weight"`
}

// Metrics are the optional headline numbers of the portfolio
type Metrics struct {
	ExpectedReturn *float64 `json:"expected_return,omitempty"`
	Volatility     *float64 `json:"volatility,omitempty"`
	SharpeRatio    *float64 `json:"sharpe_ratio,omitempty"`
}

// ExplainInput describes the portfolio to explain
type ExplainInput struct {
	Metrics       *Metrics
	Strategy      string
	RiskTolerance string
	Allocations   []Allocation
}

// BuildExplainPrompt renders the user message sent to the language model.
func BuildExplainPrompt(in ExplainInput) string {
	lines := make([]string, len(in.Allocations))
	for i, a := range in.Allocations {
		name := a.NameJA
		if name == "" {
			name = a.Symbol
		}
		lines[i] = fmt.Sprintf("- %s (%s): %s", name, a.Symbol, percent(a.Weight, 0))
	}
	return fmt.Sprintf(explainTemplate, in.Strategy, in.RiskTolerance,
		strings.Join(lines, "\n"), metricsText(in.Metrics))
}

func metricsText(m *Metrics) string {
	if m == nil {
		return noMetrics
	}
	var parts []string
	if m.ExpectedReturn != nil {
		parts = append(parts, "期待リターン: "+percent(*m.ExpectedReturn, 2))
	}
	if m.Volatility != nil {
		parts = append(parts, "ボラティリティ: "+percent(*m.Volatility, 2))
	}
	if m.SharpeRatio != nil {
		parts = append(parts, fmt.Sprintf("シャープレシオ: %.2f", *m.SharpeRatio))
	}
	if len(parts) == 0 {
		return noMetrics
	}
	return strings.Join(parts, " / ")
}

func percent(v float64, places int) string {
	return fmt.Sprintf("%.*f%%", places, v*100)
}
