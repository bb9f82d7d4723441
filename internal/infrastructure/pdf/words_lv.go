package pdf

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Numerales letones para la suma en palabras ("SUMMA VĀRDIEM") que la
// práctica contable local exige imprimir en el rēķins.
var (
	onesLV = []string{
		"", "viens", "divi", "trīs", "četri", "pieci",
		"seši", "septiņi", "astoņi", "deviņi",
	}
	teensLV = []string{
		"desmit", "vienpadsmit", "divpadsmit", "trīspadsmit", "četrpadsmit",
		"piecpadsmit", "sešpadsmit", "septiņpadsmit", "astoņpadsmit", "deviņpadsmit",
	}
	tensLV = []string{
		"", "desmit", "divdesmit", "trīsdesmit", "četrdesmit", "piecdesmit",
		"sešdesmit", "septiņdesmit", "astoņdesmit", "deviņdesmit",
	}
	hundredsLV = []string{
		"", "simts", "divsimt", "trīssimt", "četrsimt", "piecsimt",
		"sešsimt", "septiņsimt", "astoņsimt", "deviņsimt",
	}
)

func intToWordsLV(n int64) string {
	if n == 0 {
		return "nulle"
	}

	var parts []string

	if n >= 1_000_000 {
		millions := n / 1_000_000
		n %= 1_000_000
		if millions == 1 {
			parts = append(parts, "viens miljons")
		} else {
			parts = append(parts, intToWordsLV(millions)+" miljoni")
		}
	}

	if n >= 1000 {
		thousands := n / 1000
		n %= 1000
		if thousands == 1 {
			parts = append(parts, "viens tūkstotis")
		} else {
			parts = append(parts, intToWordsLV(thousands)+" tūkstoši")
		}
	}

	if n >= 100 {
		parts = append(parts, hundredsLV[n/100])
		n %= 100
	}

	if n >= 10 && n <= 19 {
		parts = append(parts, teensLV[n-10])
		n = 0
	} else {
		if n >= 20 {
			parts = append(parts, tensLV[n/10])
			n %= 10
		}
		if n > 0 {
			parts = append(parts, onesLV[n])
		}
	}

	return strings.Join(parts, " ")
}

// AmountInWordsLV convierte un importe EUR a palabras letonas.
// Ej.: 146.50 → "Simts četrdesmit seši euro un 50 centi".
// Los céntimos se imprimen en cifras, como es costumbre en los rēķini.
func AmountInWordsLV(amount decimal.Decimal) string {
	amount = amount.Round(2)
	euros := amount.IntPart()
	cents := amount.Sub(decimal.New(euros, 0)).Mul(decimal.New(100, 0)).IntPart()
	if cents < 0 {
		cents = -cents
	}

	words := intToWordsLV(euros)
	// Primera letra en mayúscula respetando runas multibyte ("četri" → "Četri").
	r, size := utf8.DecodeRuneInString(words)
	words = strings.ToUpper(string(r)) + words[size:]

	centUnit := "centi"
	if cents == 1 {
		centUnit = "cents"
	}
	return words + " euro un " + twoDigits(cents) + " " + centUnit
}

func twoDigits(n int64) string {
	if n < 10 {
		return "0" + string(rune('0'+n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}
