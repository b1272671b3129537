package ofx

import (
	"fmt"
	"strings"
)

// line is one STMTTRN entry. Dates are YYYYMMDD, posted at noon GMT.
type line struct {
	typ, date, amount, fitID, name, memo, checkNum string
}

// statement renders an OFX 1.02 SGML response with one bank or credit card
// statement.
type statement struct {
	currency string
	bankID   string
	account  string
	from, to string
	balance  string
	lines    []line
	card     bool
}

func putAll(put func(string), ls ...string) {
	for _, l := range ls {
		put(l)
	}
}

func stamp(date string) string {
	return date + "120000[0:GMT]"
}

func (s statement) String() string {
	var b strings.Builder
	put := func(s string) { b.WriteString(s + "\n") }
	putf := func(format string, args ...any) { put(fmt.Sprintf(format, args...)) }

	for _, h := range []string{
		"OFXHEADER:100", "DATA:OFXSGML", "VERSION:102", "SECURITY:NONE", "ENCODING:USASCII",
		"CHARSET:1252", "COMPRESSION:NONE", "OLDFILEUID:NONE", "NEWFILEUID:NONE",
	} {
		put(h)
	}
	put("")
	status := []string{"<STATUS>", "<CODE>0", "<SEVERITY>INFO", "</STATUS>"}
	put("<OFX>")
	put("<SIGNONMSGSRSV1>")
	put("<SONRS>")
	putAll(put, status...)
	putf("<DTSERVER>%s", stamp(s.to))
	put("<LANGUAGE>POR")
	put("</SONRS>")
	put("</SIGNONMSGSRSV1>")

	msgs, trnrs, rs, acct := "BANKMSGSRSV1", "STMTTRNRS", "STMTRS", "BANKACCTFROM"
	if s.card {
		msgs, trnrs, rs, acct = "CREDITCARDMSGSRSV1", "CCSTMTTRNRS", "CCSTMTRS", "CCACCTFROM"
	}

	putf("<%s>", msgs)
	putf("<%s>", trnrs)
	put("<TRNUID>1")
	putAll(put, status...)
	putf("<%s>", rs)
	putf("<CURDEF>%s", s.currency)
	putf("<%s>", acct)
	if !s.card {
		putf("<BANKID>%s", s.bankID)
	}
	putf("<ACCTID>%s", s.account)
	if !s.card {
		put("<ACCTTYPE>CHECKING")
	}
	putf("</%s>", acct)
	put("<BANKTRANLIST>")
	putf("<DTSTART>%s", stamp(s.from))
	putf("<DTEND>%s", stamp(s.to))
	for _, l := range s.lines {
		put("<STMTTRN>")
		putf("<TRNTYPE>%s", l.typ)
		putf("<DTPOSTED>%s", stamp(l.date))
		putf("<TRNAMT>%s", l.amount)
		putf("<FITID>%s", l.fitID)
		if l.checkNum != "" {
			putf("<CHECKNUM>%s", l.checkNum)
		}
		putf("<NAME>%s", l.name)
		if l.memo != "" {
			putf("<MEMO>%s", l.memo)
		}
		put("</STMTTRN>")
	}
	put("</BANKTRANLIST>")
	put("<LEDGERBAL>")
	putf("<BALAMT>%s", s.balance)
	putf("<DTASOF>%s", stamp(s.to))
	put("</LEDGERBAL>")
	putf("</%s>", rs)
	putf("</%s>", trnrs)
	putf("</%s>", msgs)
	put("</OFX>")
	return b.String()
}

var checkingStatement = statement{
	currency: "BRL",
	bankID:   "341",
	account:  "123456",
	from:     "20240101",
	to:       "20240131",
	balance:  "1000.00",
	lines: []line{
		{typ: "DEBIT", date: "20240115", amount: "-25.50", fitID: "C1", name: "PADARIA PAO QUENTE"},
		{typ: "DEBIT", date: "20240120", amount: "-125.00", fitID: "C2", name: "Supermercado Dia"},
		{typ: "CHECK", date: "20240125", amount: "-500.00", fitID: "C3", checkNum: "1234", name: "CHEQUE 1234"},
	},
}

var cardStatement = statement{
	card:     true,
	currency: "BRL",
	account:  "5555444433332222",
	from:     "20240101",
	to:       "20240131",
	balance:  "-85.89",
	lines: []line{
		{typ: "DEBIT", date: "20240110", amount: "-45.99", fitID: "K1", name: "MERCADOLIVRE*RT4Y7HG2"},
		{typ: "DEBIT", date: "20240115", amount: "-39.90", fitID: "K2", name: "NETFLIX.COM"},
	},
}

var mixedStatement = statement{
	currency: "BRL",
	bankID:   "001",
	account:  "5550001",
	from:     "20240201",
	to:       "20240229",
	balance:  "2745.00",
	lines: []line{
		{typ: "FEE", date: "20240210", amount: "-12.90", fitID: "F1", name: "TARIFA PACOTE"},
		{typ: "CREDIT", date: "20240205", amount: "3000.00", fitID: "F2", name: "PIX RECEBIDO ACME LTDA"},
		{typ: "ATM", date: "20240212", amount: "-200.00", fitID: "F3", name: "SAQUE 24H"},
		{typ: "OTHER", date: "20240213", amount: "0.00", fitID: "F4", name: "AJUSTE"},
		{typ: "POS", date: "20240214", amount: "-42.10", fitID: "F5", name: "DEBIT", memo: "COMPRA CARTAO PADARIA REAL"},
	},
}
