package universe

import (
	"context"

	"github.com/aristath/portfolio-advisor/internal/domain"
)

type seedAsset struct {
	symbol, name, nameJA string
	assetType            domain.AssetType
	market               domain.Market
}

var seedList = []seedAsset{
	// Japan ETFs
	{"1306.T", "TOPIX ETF", "TOPIX連動型上場投資信託", domain.AssetTypeETF, domain.MarketJP},
	{"1321.T", "Nikkei 225 ETF", "日経225連動型上場投資信託", domain.AssetTypeETF, domain.MarketJP},
	{"2558.T", "MAXIS S&P 500 ETF", "MAXIS米国株式(S&P500)上場投信", domain.AssetTypeETF, domain.MarketJP},
	{"2631.T", "MAXIS NASDAQ 100 ETF", "MAXISナスダック100上場投信", domain.AssetTypeETF, domain.MarketJP},
	{"2559.T", "MAXIS All Country ETF", "MAXIS全世界株式(オール・カントリー)上場投信", domain.AssetTypeETF, domain.MarketJP},
	{"1326.T", "SPDR Gold Shares (JP)", "SPDRゴールド・シェア", domain.AssetTypeETF, domain.MarketJP},
	// Japan REITs
	{"1343.T", "NEXT FUNDS J-REIT ETF", "NEXT FUNDS 東証REIT指数連動型上場投信", domain.AssetTypeREIT, domain.MarketJP},
	{"1476.T", "iShares Core J-REIT ETF", "iシェアーズ・コアJリート", domain.AssetTypeREIT, domain.MarketJP},
	// Japan bonds
	{"2511.T", "NEXT FUNDS Foreign Bond ETF", "NEXT FUNDS 外国債券・FTSE世界国債インデックス", domain.AssetTypeBond, domain.MarketJP},
	{"2620.T", "iShares USD Treasury 20+ yr ETF (Hedged)", "iシェアーズ 米国債20年超 ETF(為替ヘッジあり)", domain.AssetTypeBond, domain.MarketJP},
	// US ETFs
	{"VTI", "Vanguard Total Stock Market ETF", "バンガード・トータル・ストック・マーケットETF", domain.AssetTypeETF, domain.MarketUS},
	{"VEA", "Vanguard FTSE Developed Markets ETF", "バンガード・FTSE先進国市場(除く米国)ETF", domain.AssetTypeETF, domain.MarketUS},
	{"VWO", "Vanguard FTSE Emerging Markets ETF", "バンガード・FTSE・エマージング・マーケッツETF", domain.AssetTypeETF, domain.MarketUS},
	{"VXUS", "Vanguard Total International Stock ETF", "バンガード・トータル・インターナショナル・ストックETF", domain.AssetTypeETF, domain.MarketUS},
	{"VT", "Vanguard Total World Stock ETF", "バンガード・トータル・ワールド・ストックETF", domain.AssetTypeETF, domain.MarketUS},
	{"SPY", "SPDR S&P 500 ETF Trust", "SPDR S&P 500 ETF トラスト", domain.AssetTypeETF, domain.MarketUS},
	{"QQQ", "Invesco QQQ Trust", "インベスコQQQトラスト", domain.AssetTypeETF, domain.MarketUS},
	{"GLD", "SPDR Gold Shares", "SPDRゴールド・シェア", domain.AssetTypeETF, domain.MarketUS},
	{"SCHD", "Schwab U.S. Dividend Equity ETF", "シュワブ 米国配当株式ETF", domain.AssetTypeETF, domain.MarketUS},
	// US bonds
	{"BND", "Vanguard Total Bond Market ETF", "バンガード・米国トータル債券市場ETF", domain.AssetTypeBond, domain.MarketUS},
	{"AGG", "iShares Core U.S. Aggregate Bond ETF", "iシェアーズ・コア米国総合債券市場ETF", domain.AssetTypeBond, domain.MarketUS},
	{"TLT", "iShares 20+ Year Treasury Bond ETF", "iシェアーズ 米国国債 20年超 ETF", domain.AssetTypeBond, domain.MarketUS},
	{"IEF", "iShares 7-10 Year Treasury Bond ETF", "iシェアーズ 米国国債 7-10年 ETF", domain.AssetTypeBond, domain.MarketUS},
	{"SHY", "iShares 1-3 Year Treasury Bond ETF", "iシェアーズ 米国国債 1-3年 ETF", domain.AssetTypeBond, domain.MarketUS},
	// US REITs
	{"VNQ", "Vanguard Real Estate ETF", "バンガード・リアルエステートETF", domain.AssetTypeREIT, domain.MarketUS},
}

// SeedAssets returns the default investment universe. JP listings trade in
// JPY and US listings in USD.
func SeedAssets() []domain.Asset {
	out := make([]domain.Asset, len(seedList))
	for i, s := range seedList {
		currency := domain.CurrencyUSD
		if s.market == domain.MarketJP {
			currency = domain.CurrencyJPY
		}
		out[i] = domain.Asset{
			Symbol:    s.symbol,
			Name:      s.name,
			NameJA:    s.nameJA,
			AssetType: s.assetType,
			Market:    s.market,
			Currency:  currency,
			IsActive:  true,
		}
	}
	return out
}

// AssetWriter inserts assets that are not yet stored
type AssetWriter interface {
	UpsertAssets(ctx context.Context, assets []domain.Asset) (int, error)
}

// Seed inserts the default universe and returns the number of new assets.
// Running it again inserts nothing.
func Seed(ctx context.Context, w AssetWriter) (int, error) {
	return w.UpsertAssets(ctx, SeedAssets())
}
