package reconcile

// DefaultPrefixes is the ordered list of organizational prefixes removed
// when prefix stripping is enabled. Order matters: the first match wins and
// at most one prefix is removed, so "Club Atletico Lanus" loses only "Club".
var DefaultPrefixes = []string{
	"CA", "CD", "CF", "FC", "SC", "AC", "AS", "AD", "CS", "CE", "SD", "UD",
	"Club", "Deportivo", "Real", "Atletico", "Club Atletico", "Club Deportivo",
}

// DefaultAbbreviations maps parenthesized country codes to the full country
// names some providers spell out, so "Alianza FC (Pan)" can match
// "Alianza FC Panama".
var DefaultAbbreviations = map[string]string{
	"(Pan)": "Panama",
	"(Uru)": "Uruguay",
	"(SLV)": "El Salvador",
	"(Par)": "Paraguay",
	"(Ecu)": "Ecuador",
	"(Chi)": "Chile",
	"(Arg)": "Argentina",
	"(Mex)": "Mexico",
	"(Bra)": "Brazil",
	"(Col)": "Colombia",
	"(Per)": "Peru",
	"(Ven)": "Venezuela",
	"(Bol)": "Bolivia",
	"(KSA)": "Saudi Arabia",
	"(UAE)": "United Arab Emirates",
	"(QAT)": "Qatar",
	"(JOR)": "Jordan",
	"(KUW)": "Kuwait",
	"(EGY)": "Egypt",
	"(BRN)": "Bahrain",
}
