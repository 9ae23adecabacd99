package tagmap

// Default tag maps for equity-research workflows. The synonym lists are
// data, maintained against observed FSDS tag usage; the `secpanel tags`
// command reports unmapped tags to grow them.

// DefaultBalanceSheet maps canonical balance-sheet items to their tags.
var DefaultBalanceSheet = TagMap{Fields: []Field{
	{Canonical: "CashAndCashEquivalents", Synonyms: []string{
		"CashAndCashEquivalentsAtCarryingValue",
		"Cash",
		"RestrictedCashCurrent",
	}},
	{Canonical: "ShortTermInvestments", Synonyms: []string{
		"ShortTermInvestments",
		"InvestmentOwnedAtFairValue",
		"InvestmentOwnedAtCost",
	}},
	{Canonical: "AccountsReceivable", Synonyms: []string{
		"AccountsReceivableNetCurrent",
		"OtherReceivablesNetCurrent",
		"FinancingReceivableExcludingAccruedInterestBeforeAllowanceForCreditLoss",
		"AllowanceForDoubtfulAccountsReceivableCurrent",
	}},
	{Canonical: "Inventory", Synonyms: []string{
		"InventoryNet",
	}},
	{Canonical: "TotalCurrentAssets", Synonyms: []string{
		"AssetsCurrent",
		"CurrentAssets",
	}},
	{Canonical: "PPandE", Synonyms: []string{
		"PropertyPlantAndEquipmentNet",
		"PropertyPlantAndEquipmentIncludingRightofuseAssets",
		"PropertyPlantAndEquipment",
	}},
	{Canonical: "Goodwill", Synonyms: []string{
		"Goodwill",
	}},
	{Canonical: "Intangibles", Synonyms: []string{
		"IntangibleAssetsNetExcludingGoodwill",
		"FiniteLivedIntangibleAssetsNet",
		"IntangibleAssetsOtherThanGoodwill",
		"IntangibleAssetsAndGoodwill",
	}},
	{Canonical: "TotalAssets", Synonyms: []string{
		"Assets",
		"LiabilitiesAndStockholdersEquity",
		"LiabilitiesAndEquity",
		"EquityAndLiabilities",
	}},
	{Canonical: "TotalNoncurrentAssets", Synonyms: []string{
		"AssetsNoncurrent",
		"NoncurrentAssets",
	}},
	{Canonical: "AccountsPayable", Synonyms: []string{
		"AccountsPayableCurrent",
		"AccountsPayableAndAccruedLiabilitiesCurrent",
		"TradeAndOtherCurrentPayables",
	}},
	{Canonical: "ShortTermDebt", Synonyms: []string{
		"LongTermDebtCurrent",
		"ShortTermBorrowings",
		"NotesPayableCurrent",
	}},
	{Canonical: "TotalCurrentLiabilities", Synonyms: []string{
		"LiabilitiesCurrent",
		"CurrentLiabilities",
	}},
	{Canonical: "LongTermDebt", Synonyms: []string{
		"LongTermDebtNoncurrent",
		"LongtermBorrowings",
	}},
	{Canonical: "OtherCurrentLiabilities", Synonyms: []string{
		"OtherLiabilitiesCurrent",
		"AccruedLiabilitiesCurrent",
		"TaxesPayableCurrent",
		"AccruedIncomeTaxesCurrent",
		"EmployeeRelatedLiabilitiesCurrent",
		"ContractWithCustomerLiabilityCurrent",
		"DerivativeLiabilitiesCurrent",
	}},
	{Canonical: "OtherNoncurrentLiabilities", Synonyms: []string{
		"OtherLiabilitiesNoncurrent",
		"LiabilitiesNoncurrent",
		"NoncurrentLiabilities",
	}},
	{Canonical: "TotalLiabilities", Synonyms: []string{
		"Liabilities",
	}},
	{Canonical: "ShareholdersEquity", Synonyms: []string{
		"StockholdersEquity",
		"StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest",
		"Equity",
		"TotalEquity",
		"EquityAttributableToOwnersOfParent",
	}},
	{Canonical: "RetainedEarnings", Synonyms: []string{
		"RetainedEarningsAccumulatedDeficit",
	}},
	{Canonical: "TreasuryStock", Synonyms: []string{
		"TreasuryStockCommonValue",
		"TreasuryStockValue",
	}},
}}

// DefaultIncomeStatement maps canonical income-statement items to their tags.
var DefaultIncomeStatement = TagMap{Fields: []Field{
	{Canonical: "Revenue", Synonyms: []string{
		"RevenueFromContractWithCustomerExcludingAssessedTax",
		"Revenues",
		"RevenueFromContractWithCustomerIncludingAssessedTax",
		"SalesRevenueNet",
	}},
	{Canonical: "CostOfRevenue", Synonyms: []string{
		"CostOfRevenue",
		"CostOfGoodsAndServicesSold",
		"CostOfSales",
	}},
	{Canonical: "GrossProfit", Synonyms: []string{
		"GrossProfit",
	}},
	{Canonical: "RND", Synonyms: []string{
		"ResearchAndDevelopmentExpense",
	}},
	{Canonical: "SGA", Synonyms: []string{
		"SellingGeneralAndAdministrativeExpense",
		"GeneralAndAdministrativeExpense",
		"SellingAndMarketingExpense",
	}},
	{Canonical: "DepAmort", Synonyms: []string{
		"DepreciationAndAmortization",
		"DepreciationDepletionAndAmortization",
		"Depreciation",
	}},
	{Canonical: "OperatingExpenses", Synonyms: []string{
		"OperatingExpenses",
		"CostsAndExpenses",
	}},
	{Canonical: "OperatingIncome", Synonyms: []string{
		"OperatingIncomeLoss",
		"ProfitLossFromOperatingActivities",
	}},
	{Canonical: "InterestExpense", Synonyms: []string{
		"InterestExpense",
		"InterestExpenseNonoperating",
		"FinanceCosts",
		"InterestIncomeExpenseNonoperatingNet",
		"InterestIncomeExpenseNet",
	}},
	{Canonical: "PretaxIncome", Synonyms: []string{
		"IncomeLossFromContinuingOperationsBeforeIncomeTaxesExtraordinaryItemsNoncontrollingInterest",
		"ProfitLossBeforeTax",
		"IncomeLossFromContinuingOperations",
	}},
	{Canonical: "IncomeTaxExpense", Synonyms: []string{
		"IncomeTaxExpenseContinuingOperations",
		"IncomeTaxExpenseBenefit",
	}},
	{Canonical: "NetIncome", Synonyms: []string{
		"NetIncomeLoss",
		"ProfitLoss",
	}},
	{Canonical: "OtherIncomeExpense", Synonyms: []string{
		"NonoperatingIncomeExpense",
		"OtherNonoperatingIncomeExpense",
		"OtherNonoperatingIncome",
		"OtherOperatingIncomeExpenseNet",
		"OtherIncome",
	}},
}}

// DefaultCashFlow maps canonical cash-flow items to their tags.
var DefaultCashFlow = TagMap{Fields: []Field{
	{Canonical: "CFO", Synonyms: []string{
		"NetCashProvidedByUsedInOperatingActivities",
		"CashFlowsFromUsedInOperatingActivities",
	}},
	{Canonical: "CFI", Synonyms: []string{
		"NetCashProvidedByUsedInInvestingActivities",
		"CashFlowsFromUsedInInvestingActivities",
	}},
	{Canonical: "CFF", Synonyms: []string{
		"NetCashProvidedByUsedInFinancingActivities",
		"CashFlowsFromUsedInFinancingActivities",
	}},
	{Canonical: "CapEx", Synonyms: []string{
		"PaymentsToAcquirePropertyPlantAndEquipment",
		"CapitalExpendituresIncurredButNotYetPaid",
	}},
	{Canonical: "ProceedsFromSalePPE", Synonyms: []string{
		"ProceedsFromSaleOfPropertyPlantAndEquipment",
	}},
	{Canonical: "ShareRepurchase", Synonyms: []string{
		"PaymentsForRepurchaseOfCommonStock",
	}},
	{Canonical: "EquityIssuance", Synonyms: []string{
		"ProceedsFromIssuanceOfCommonStock",
		"ProceedsFromStockOptionsExercised",
		"StockIssued1",
	}},
	{Canonical: "DebtIssuance", Synonyms: []string{
		"ProceedsFromNotesPayable",
		"ProceedsFromConvertibleDebt",
		"ProceedsFromRelatedPartyDebt",
	}},
	{Canonical: "DebtRepayment", Synonyms: []string{
		"RepaymentsOfNotesPayable",
		"RepaymentsOfLongTermDebt",
		"RepaymentsOfRelatedPartyDebt",
	}},
	{Canonical: "DepAmortCF", Synonyms: []string{
		"DepreciationAndAmortization",
		"DepreciationDepletionAndAmortization",
		"Depreciation",
		"AmortizationOfIntangibleAssets",
		"AmortizationOfDebtDiscountPremium",
	}},
	{Canonical: "StockBasedComp", Synonyms: []string{
		"ShareBasedCompensation",
	}},
	{Canonical: "InterestPaid", Synonyms: []string{
		"InterestPaidNet",
	}},
	{Canonical: "IncomeTaxesPaid", Synonyms: []string{
		"IncomeTaxesPaidNet",
		"IncomeTaxesPaid",
	}},
}}

// DefaultShares maps point-in-time and weighted-average share counts.
var DefaultShares = TagMap{Fields: []Field{
	{Canonical: "CommonSharesOutstanding", Synonyms: []string{
		"CommonStockSharesOutstanding",
		"NumberOfSharesOutstanding",
		"SharesOutstanding",
		"NumberOfSharesOutstandingBasic",
		"CommonStockSharesOutstandingIncludingEffectOfRecapitalization",
		"CommonStockSharesNotOutstanding",
		"CommonStockLiabilityShares",
		"CommonStockRepresentativeShares",
	}},
	{Canonical: "CommonSharesIssued", Synonyms: []string{
		"CommonStockSharesIssued",
		"NumberOfSharesIssued",
		"SharesIssued",
		"CommonStockIssuedShares",
	}},
	{Canonical: "WASOBasic", Synonyms: []string{
		"WeightedAverageNumberOfSharesOutstandingBasic",
		"WeightedAverageSharesOutstandingBasic",
		"WeightedAverageNumberOfCommonSharesOutstandingBasic",
		"BasicWeightedAverageNumberOfSharesOutstanding",
		"BasicWeightedAverageCommonShares",
		"WeightedAverageSharesOutstandingOfNonredeemableCommonStock",
		"WeightedAverageNumberOfSharesOutstandingBasic1",
		"WeightedAverageNumberOfSharesOutstandingDuringThePeriodBasic",
	}},
	{Canonical: "WASODiluted", Synonyms: []string{
		"WeightedAverageNumberOfDilutedSharesOutstanding",
		"WeightedAverageNumberOfCommonSharesOutstandingDiluted",
		"DilutedWeightedAverageNumberOfShareOutstanding",
		"DilutedWeightedAverageCommonShares",
		"WeightedAverageSharesOutstandingDiluted",
		"WeightedAverageReverseStockSplitNumberOfDilutedSharesOutstanding",
		"WeightedAverageNumberOfSharesOutstandingDuringThePeriodDiluted",
		"WeightedAverageNumberOfDilutedAmericanDepositarySharesOutstanding",
		"WeightedAverageNumberOfDilutedSharesOutstanding1",
		"WeightedAverageOrdinarySharesOutstandingBasicAndDiluted",
		"WeightedAverageSharesOutstandingOfRedeemableCommonStock",
	}},
	{Canonical: "WASOCombinedBasicDiluted", Synonyms: []string{
		"WeightedAverageNumberOfSharesOutstandingBasicAndDiluted",
		"WeightedAverageCommonSharesOutstandingBasicAndDiluted",
		"WeightedAverageNumberOfCommonSharesOutstandingBasicAndDiluted",
		"WeightedAverageNumberOfShareOutstandingBasicAndDiluted",
		"AverageNumberOfCommonShareOutstandingBasicAndDiluted",
		"BasicAndDilutedWeightedAverageNumberOfSharesOutstanding",
		"WeightedAverageLimitedPartnershipUnitsOutstandingBasicAndDiluted",
	}},
	{Canonical: "EPS", Synonyms: []string{
		"EarningsPerShareAttributableToCommonShareholders",
	}},
}}

// DefaultMonetaryUnits normalizes reported monetary units to whole dollars.
var DefaultMonetaryUnits = NewUnitTable(map[string]float64{
	"USD":          1,
	"USDm":         1e6,
	"USDmillions":  1e6,
	"USDth":        1e3,
	"USDthousands": 1e3,
})

// DefaultShareUnits restricts the shares pass to share-count facts.
var DefaultShareUnits = NewUnitTable(map[string]float64{
	"shares": 1,
})

// Defaults returns the compiled-in tag map set.
func Defaults() Set {
	return Set{
		BalanceSheet:    DefaultBalanceSheet,
		IncomeStatement: DefaultIncomeStatement,
		CashFlow:        DefaultCashFlow,
		Shares:          DefaultShares,
		MonetaryUnits:   DefaultMonetaryUnits,
		ShareUnits:      DefaultShareUnits,
	}
}
