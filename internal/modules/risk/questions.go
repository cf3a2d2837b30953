package risk

const singleChoice = "single_choice"

func standardQuestions() []Question {
	return []Question{
		{
			ID:       1,
			Question: "あなたの年齢を教えてください",
			Type:     singleChoice,
			Options: []Option{
				{Value: "20s", Label: "20代", ScoreWeight: 3},
				{Value: "30s", Label: "30代", ScoreWeight: 3},
				{Value: "40s", Label: "40代", ScoreWeight: 2},
				{Value: "50s", Label: "50代", ScoreWeight: 1},
				{Value: "60plus", Label: "60代以上", ScoreWeight: 0},
			},
		},
		{
			ID:       2,
			Question: "投資の目的は何ですか？",
			Type:     singleChoice,
			Options: []Option{
				{Value: "retirement", Label: "老後の資金準備", ScoreWeight: 2},
				{Value: "education", Label: "教育資金", ScoreWeight: 1},
				{Value: "wealth_growth", Label: "資産を増やしたい", ScoreWeight: 3},
				{Value: "preservation", Label: "資産を守りたい", ScoreWeight: 0},
			},
		},
		{
			ID:       questionHorizon,
			Question: "投資期間はどれくらいを予定していますか？",
			Type:     singleChoice,
			Options: []Option{
				{Value: "short", Label: "1〜3年", ScoreWeight: 0},
				{Value: "medium", Label: "3〜10年", ScoreWeight: 2},
				{Value: "long", Label: "10年以上", ScoreWeight: 3},
			},
		},
		{
			ID:       questionExperience,
			Question: "投資経験はありますか？",
			Type:     singleChoice,
			Options: []Option{
				{Value: "none", Label: "まったくない", ScoreWeight: 0},
				{Value: "beginner", Label: "1年未満", ScoreWeight: 1},
				{Value: "intermediate", Label: "1〜5年", ScoreWeight: 2},
				{Value: "advanced", Label: "5年以上", ScoreWeight: 3},
			},
		},
		{
			ID:       5,
			Question: "投資した資産が1ヶ月で20%下落した場合、どうしますか？",
			Type:     singleChoice,
			Options: []Option{
				{Value: "sell_all", Label: "すべて売却する", ScoreWeight: 0},
				{Value: "sell_part", Label: "一部を売却する", ScoreWeight: 1},
				{Value: "hold", Label: "そのまま保持する", ScoreWeight: 2},
				{Value: "buy_more", Label: "買い増しする", ScoreWeight: 3},
			},
		},
		{
			ID:       6,
			Question: "毎月の投資可能額はどれくらいですか？",
			Type:     singleChoice,
			Options: []Option{
				{Value: "under_10k", Label: "1万円未満", ScoreWeight: 0},
				{Value: "10k_30k", Label: "1〜3万円", ScoreWeight: 1},
				{Value: "30k_100k", Label: "3〜10万円", ScoreWeight: 2},
				{Value: "over_100k", Label: "10万円以上", ScoreWeight: 3},
			},
		},
		{
			ID:       7,
			Question: "以下のうち、最も共感する投資方針はどれですか？",
			Type:     singleChoice,
			Options: []Option{
				{Value: "safety_first", Label: "元本割れはなるべく避けたい", ScoreWeight: 0},
				{Value: "balanced", Label: "多少のリスクは許容し、バランスよく運用したい", ScoreWeight: 2},
				{Value: "growth", Label: "リスクを取ってでも高いリターンを狙いたい", ScoreWeight: 3},
			},
		},
		{
			ID:       8,
			Question: "緊急時に使える預貯金（生活費の3〜6ヶ月分）はありますか？",
			Type:     singleChoice,
			Options: []Option{
				{Value: "no", Label: "ない", ScoreWeight: 0},
				{Value: "partial", Label: "一部ある（3ヶ月未満）", ScoreWeight: 1},
				{Value: "yes", Label: "十分にある（6ヶ月以上）", ScoreWeight: 2},
			},
		},
	}
}
