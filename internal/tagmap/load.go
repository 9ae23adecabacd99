package tagmap

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// fileSchema mirrors the YAML layout of a tag-map override file. Fields are
// sequences, not mappings, so synonym preference order survives parsing.
//
//	balance_sheet:
//	  - canonical: TotalAssets
//	    synonyms: [Assets, LiabilitiesAndStockholdersEquity]
//	units:
//	  USD: 1
//	  USDth: 1000
type fileSchema struct {
	BalanceSheet    []Field            `koanf:"balance_sheet"`
	IncomeStatement []Field            `koanf:"income_statement"`
	CashFlow        []Field            `koanf:"cash_flow"`
	Shares          []Field            `koanf:"shares"`
	Units           map[string]float64 `koanf:"units"`
	ShareUnits      map[string]float64 `koanf:"share_units"`
}

// LoadFile reads a tag-map YAML file and overlays it on the compiled-in
// defaults. Sections absent from the file keep their default maps; a present
// section replaces its default wholesale (partial merges would make synonym
// ranks ambiguous).
func LoadFile(path string) (Set, error) {
	set := Defaults()

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Set{}, fmt.Errorf("failed to read tag map %s: %w", path, err)
	}

	var fs fileSchema
	if err := k.Unmarshal("", &fs); err != nil {
		return Set{}, fmt.Errorf("failed to decode tag map %s: %w", path, err)
	}

	if len(fs.BalanceSheet) > 0 {
		set.BalanceSheet = TagMap{Fields: fs.BalanceSheet}
	}
	if len(fs.IncomeStatement) > 0 {
		set.IncomeStatement = TagMap{Fields: fs.IncomeStatement}
	}
	if len(fs.CashFlow) > 0 {
		set.CashFlow = TagMap{Fields: fs.CashFlow}
	}
	if len(fs.Shares) > 0 {
		set.Shares = TagMap{Fields: fs.Shares}
	}
	if len(fs.Units) > 0 {
		set.MonetaryUnits = NewUnitTable(fs.Units)
	}
	if len(fs.ShareUnits) > 0 {
		set.ShareUnits = NewUnitTable(fs.ShareUnits)
	}

	return set, nil
}
