package ibkr

import (
	"encoding/xml"
	"time"
)

// FlexRequestResponse is the first-step response of the flex web service:
// a reference code and URL for downloading the generated statement.
type FlexRequestResponse struct {
	XMLName       xml.Name `xml:"FlexStatementResponse"`
	Timestamp     string   `xml:"timestamp,attr"`
	Status        string   `xml:"Status"`        // Success or Fail
	ReferenceCode int      `xml:"ReferenceCode"` // Code to download the requested statement
	URL           string   `xml:"Url"`           // URL to download statement
	ErrorCode     *int     `xml:"ErrorCode"`
	ErrorMessage  *string  `xml:"ErrorMessage"`
}

// FlexQueryResponse is the downloaded flex statement.
type FlexQueryResponse struct {
	XMLName        xml.Name `xml:"FlexQueryResponse"`
	QueryName      string   `xml:"queryName,attr"`
	Type           string   `xml:"type,attr"`
	FlexStatements struct {
		Count          string          `xml:"count,attr"`
		FlexStatements []FlexStatement `xml:"FlexStatement"`
	} `xml:"FlexStatements"`
	RetrievedAt time.Time `xml:"-"`
	QueryID     int       `xml:"-"`
}

// FlexStatement holds one account's activity within a flex report.
type FlexStatement struct {
	AccountID     string `xml:"accountId,attr"`
	FromDate      string `xml:"fromDate,attr"`
	ToDate        string `xml:"toDate,attr"`
	WhenGenerated string `xml:"whenGenerated,attr"`
	Trades        struct {
		Trades []FlexTrade `xml:"Trade"`
	} `xml:"Trades"`
	OpenPositions struct {
		OpenPositions []FlexOpenPosition `xml:"OpenPosition"`
	} `xml:"OpenPositions"`
	CashTransactions struct {
		CashTransactions []FlexCashTransaction `xml:"CashTransaction"`
	} `xml:"CashTransactions"`
}

// FlexTrade is one executed trade in a flex statement. Quantity is
// negative for sells.
type FlexTrade struct {
	Currency      string  `xml:"currency,attr"`
	Symbol        string  `xml:"symbol,attr"`
	Description   string  `xml:"description,attr"`
	Isin          string  `xml:"isin,attr"`
	Quantity      float64 `xml:"quantity,attr"`
	TradePrice    float64 `xml:"tradePrice,attr"`
	IbCommission  float64 `xml:"ibCommission,attr"`
	NetCash       float64 `xml:"netCash,attr"`
	TransactionID int64   `xml:"transactionID,attr"`
	TradeDate     string  `xml:"tradeDate,attr"`
	BuySell       string  `xml:"buySell,attr"` // BUY or SELL
	ReportDate    string  `xml:"reportDate,attr"`
}

// FlexOpenPosition is one broker-reported holding in a flex statement.
type FlexOpenPosition struct {
	Currency  string  `xml:"currency,attr"`
	Symbol    string  `xml:"symbol,attr"`
	Isin      string  `xml:"isin,attr"`
	Position  float64 `xml:"position,attr"`
	CostBasis float64 `xml:"costBasisPrice,attr"`
}

// FlexCashTransaction is one cash movement (dividends, fees, interest).
type FlexCashTransaction struct {
	Currency      string  `xml:"currency,attr"`
	Symbol        string  `xml:"symbol,attr"`
	Description   string  `xml:"description,attr"`
	DateTime      string  `xml:"dateTime,attr"`
	Amount        float64 `xml:"amount,attr"`
	Type          string  `xml:"type,attr"` // e.g. "Dividends"
	TransactionID int64   `xml:"transactionID,attr"`
	ReportDate    string  `xml:"reportDate,attr"`
}
