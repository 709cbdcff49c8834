package barcode

import (
	"slices"
	"sort"
	"strconv"
)

// UnknownRegion is reported for prefixes that no range in the table covers.
const UnknownRegion = "Unknown / globally reserved"

// PrefixRegion is an inclusive range of 3-digit GS1 prefixes assigned to one
// member organization or special purpose.
type PrefixRegion struct {
	Start int      `json:"start" yaml:"start"`
	End   int      `json:"end" yaml:"end"`
	Name  string   `json:"name" yaml:"name"`
	Codes []string `json:"codes,omitempty" yaml:"codes,omitempty"` // ISO 3166-1 alpha-2
	Note  string   `json:"note,omitempty" yaml:"note,omitempty"`

	// Qualifier is appended to localized country names, as in "USA (drugs)".
	Qualifier string `json:"qualifier,omitempty" yaml:"qualifier,omitempty"`
}

// Contains reports whether prefix n falls within the range.
func (r PrefixRegion) Contains(n int) bool {
	return n >= r.Start && n <= r.End
}

// Range formats the range as "400-440", or "471" for single prefixes.
func (r PrefixRegion) Range() string {
	if r.Start == r.End {
		return pad3(r.Start)
	}
	return pad3(r.Start) + "-" + pad3(r.End)
}

func pad3(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}

// prefixTable is sorted by Start and its ranges never overlap.
var prefixTable = []PrefixRegion{
	{Start: 0, End: 19, Name: "USA/Canada", Codes: []string{"US", "CA"}, Note: "UPC-A compatible"},
	{Start: 20, End: 29, Name: "Restricted circulation (in-store)"},
	{Start: 30, End: 39, Name: "USA (drugs)", Codes: []string{"US"}, Note: "National Drug Code", Qualifier: "drugs"},
	{Start: 40, End: 49, Name: "Restricted circulation (in-store)"},
	{Start: 50, End: 59, Name: "Coupons"},
	{Start: 60, End: 139, Name: "USA/Canada", Codes: []string{"US", "CA"}},
	{Start: 200, End: 299, Name: "Restricted circulation (in-store)"},
	{Start: 300, End: 379, Name: "France/Monaco", Codes: []string{"FR", "MC"}},
	{Start: 380, End: 380, Name: "Bulgaria", Codes: []string{"BG"}},
	{Start: 383, End: 383, Name: "Slovenia", Codes: []string{"SI"}},
	{Start: 385, End: 385, Name: "Croatia", Codes: []string{"HR"}},
	{Start: 387, End: 387, Name: "Bosnia and Herzegovina", Codes: []string{"BA"}},
	{Start: 389, End: 389, Name: "Montenegro", Codes: []string{"ME"}},
	{Start: 390, End: 390, Name: "Kosovo", Codes: []string{"XK"}},
	{Start: 400, End: 440, Name: "Germany", Codes: []string{"DE"}},
	{Start: 450, End: 459, Name: "Japan", Codes: []string{"JP"}},
	{Start: 460, End: 469, Name: "Russia", Codes: []string{"RU"}},
	{Start: 470, End: 470, Name: "Kyrgyzstan", Codes: []string{"KG"}},
	{Start: 471, End: 471, Name: "Taiwan", Codes: []string{"TW"}},
	{Start: 474, End: 474, Name: "Estonia", Codes: []string{"EE"}},
	{Start: 475, End: 475, Name: "Latvia", Codes: []string{"LV"}},
	{Start: 476, End: 476, Name: "Azerbaijan", Codes: []string{"AZ"}},
	{Start: 477, End: 477, Name: "Lithuania", Codes: []string{"LT"}},
	{Start: 478, End: 478, Name: "Uzbekistan", Codes: []string{"UZ"}},
	{Start: 479, End: 479, Name: "Sri Lanka", Codes: []string{"LK"}},
	{Start: 480, End: 480, Name: "Philippines", Codes: []string{"PH"}},
	{Start: 481, End: 481, Name: "Belarus", Codes: []string{"BY"}},
	{Start: 482, End: 482, Name: "Ukraine", Codes: []string{"UA"}},
	{Start: 483, End: 483, Name: "Turkmenistan", Codes: []string{"TM"}},
	{Start: 484, End: 484, Name: "Moldova", Codes: []string{"MD"}},
	{Start: 485, End: 485, Name: "Armenia", Codes: []string{"AM"}},
	{Start: 486, End: 486, Name: "Georgia", Codes: []string{"GE"}},
	{Start: 487, End: 487, Name: "Kazakhstan", Codes: []string{"KZ"}},
	{Start: 488, End: 488, Name: "Tajikistan", Codes: []string{"TJ"}},
	{Start: 489, End: 489, Name: "Hong Kong", Codes: []string{"HK"}},
	{Start: 490, End: 499, Name: "Japan", Codes: []string{"JP"}},
	{Start: 500, End: 509, Name: "United Kingdom", Codes: []string{"GB"}},
	{Start: 520, End: 521, Name: "Greece", Codes: []string{"GR"}},
	{Start: 528, End: 528, Name: "Lebanon", Codes: []string{"LB"}},
	{Start: 529, End: 529, Name: "Cyprus", Codes: []string{"CY"}},
	{Start: 530, End: 530, Name: "Albania", Codes: []string{"AL"}},
	{Start: 531, End: 531, Name: "North Macedonia", Codes: []string{"MK"}},
	{Start: 535, End: 535, Name: "Malta", Codes: []string{"MT"}},
	{Start: 539, End: 539, Name: "Ireland", Codes: []string{"IE"}},
	{Start: 540, End: 549, Name: "Belgium/Luxembourg", Codes: []string{"BE", "LU"}},
	{Start: 560, End: 560, Name: "Portugal", Codes: []string{"PT"}},
	{Start: 569, End: 569, Name: "Iceland", Codes: []string{"IS"}},
	{Start: 570, End: 579, Name: "Denmark", Codes: []string{"DK", "FO", "GL"}, Note: "Includes Faroe Islands and Greenland"},
	{Start: 590, End: 590, Name: "Poland", Codes: []string{"PL"}},
	{Start: 594, End: 594, Name: "Romania", Codes: []string{"RO"}},
	{Start: 599, End: 599, Name: "Hungary", Codes: []string{"HU"}},
	{Start: 600, End: 601, Name: "South Africa", Codes: []string{"ZA"}},
	{Start: 603, End: 603, Name: "Ghana", Codes: []string{"GH"}},
	{Start: 604, End: 604, Name: "Senegal", Codes: []string{"SN"}},
	{Start: 608, End: 608, Name: "Bahrain", Codes: []string{"BH"}},
	{Start: 609, End: 609, Name: "Mauritius", Codes: []string{"MU"}},
	{Start: 611, End: 611, Name: "Morocco", Codes: []string{"MA"}},
	{Start: 613, End: 613, Name: "Algeria", Codes: []string{"DZ"}},
	{Start: 615, End: 615, Name: "Nigeria", Codes: []string{"NG"}},
	{Start: 616, End: 616, Name: "Kenya", Codes: []string{"KE"}},
	{Start: 618, End: 618, Name: "Côte d'Ivoire", Codes: []string{"CI"}},
	{Start: 619, End: 619, Name: "Tunisia", Codes: []string{"TN"}},
	{Start: 620, End: 620, Name: "Tanzania", Codes: []string{"TZ"}},
	{Start: 621, End: 621, Name: "Syria", Codes: []string{"SY"}},
	{Start: 622, End: 622, Name: "Egypt", Codes: []string{"EG"}},
	{Start: 623, End: 623, Name: "Brunei", Codes: []string{"BN"}},
	{Start: 624, End: 624, Name: "Libya", Codes: []string{"LY"}},
	{Start: 625, End: 625, Name: "Jordan", Codes: []string{"JO"}},
	{Start: 626, End: 626, Name: "Iran", Codes: []string{"IR"}},
	{Start: 627, End: 627, Name: "Kuwait", Codes: []string{"KW"}},
	{Start: 628, End: 628, Name: "Saudi Arabia", Codes: []string{"SA"}},
	{Start: 629, End: 629, Name: "United Arab Emirates", Codes: []string{"AE"}},
	{Start: 640, End: 649, Name: "Finland", Codes: []string{"FI"}},
	{Start: 690, End: 699, Name: "China", Codes: []string{"CN"}},
	{Start: 700, End: 709, Name: "Norway", Codes: []string{"NO"}},
	{Start: 729, End: 729, Name: "Israel", Codes: []string{"IL"}},
	{Start: 730, End: 739, Name: "Sweden", Codes: []string{"SE"}},
	{Start: 740, End: 740, Name: "Guatemala", Codes: []string{"GT"}},
	{Start: 741, End: 741, Name: "El Salvador", Codes: []string{"SV"}},
	{Start: 742, End: 742, Name: "Honduras", Codes: []string{"HN"}},
	{Start: 743, End: 743, Name: "Nicaragua", Codes: []string{"NI"}},
	{Start: 744, End: 744, Name: "Costa Rica", Codes: []string{"CR"}},
	{Start: 745, End: 745, Name: "Panama", Codes: []string{"PA"}},
	{Start: 746, End: 746, Name: "Dominican Republic", Codes: []string{"DO"}},
	{Start: 750, End: 750, Name: "Mexico", Codes: []string{"MX"}},
	{Start: 754, End: 755, Name: "Canada", Codes: []string{"CA"}},
	{Start: 759, End: 759, Name: "Venezuela", Codes: []string{"VE"}},
	{Start: 760, End: 769, Name: "Switzerland/Liechtenstein", Codes: []string{"CH", "LI"}},
	{Start: 770, End: 771, Name: "Colombia", Codes: []string{"CO"}},
	{Start: 773, End: 773, Name: "Uruguay", Codes: []string{"UY"}},
	{Start: 775, End: 775, Name: "Peru", Codes: []string{"PE"}},
	{Start: 777, End: 777, Name: "Bolivia", Codes: []string{"BO"}},
	{Start: 778, End: 779, Name: "Argentina", Codes: []string{"AR"}},
	{Start: 780, End: 780, Name: "Chile", Codes: []string{"CL"}},
	{Start: 784, End: 784, Name: "Paraguay", Codes: []string{"PY"}},
	{Start: 786, End: 786, Name: "Ecuador", Codes: []string{"EC"}},
	{Start: 789, End: 790, Name: "Brazil", Codes: []string{"BR"}},
	{Start: 800, End: 839, Name: "Italy", Codes: []string{"IT", "SM", "VA"}, Note: "Includes San Marino and Vatican City"},
	{Start: 840, End: 849, Name: "Spain/Andorra", Codes: []string{"ES", "AD"}},
	{Start: 850, End: 850, Name: "Cuba", Codes: []string{"CU"}},
	{Start: 858, End: 858, Name: "Slovakia", Codes: []string{"SK"}},
	{Start: 859, End: 859, Name: "Czech Republic", Codes: []string{"CZ"}},
	{Start: 860, End: 860, Name: "Serbia", Codes: []string{"RS"}},
	{Start: 865, End: 865, Name: "Mongolia", Codes: []string{"MN"}},
	{Start: 867, End: 867, Name: "North Korea", Codes: []string{"KP"}},
	{Start: 868, End: 869, Name: "Turkey", Codes: []string{"TR"}},
	{Start: 870, End: 879, Name: "Netherlands", Codes: []string{"NL"}},
	{Start: 880, End: 880, Name: "South Korea", Codes: []string{"KR"}},
	{Start: 884, End: 884, Name: "Cambodia", Codes: []string{"KH"}},
	{Start: 885, End: 885, Name: "Thailand", Codes: []string{"TH"}},
	{Start: 888, End: 888, Name: "Singapore", Codes: []string{"SG"}},
	{Start: 890, End: 890, Name: "India", Codes: []string{"IN"}},
	{Start: 893, End: 893, Name: "Vietnam", Codes: []string{"VN"}},
	{Start: 896, End: 896, Name: "Pakistan", Codes: []string{"PK"}},
	{Start: 899, End: 899, Name: "Indonesia", Codes: []string{"ID"}},
	{Start: 900, End: 919, Name: "Austria", Codes: []string{"AT"}},
	{Start: 930, End: 939, Name: "Australia", Codes: []string{"AU"}},
	{Start: 940, End: 949, Name: "New Zealand", Codes: []string{"NZ"}},
	{Start: 950, End: 950, Name: "GS1 Global Office", Note: "Special applications"},
	{Start: 951, End: 951, Name: "GS1 Global Office", Note: "EPC General Manager Numbers"},
	{Start: 955, End: 955, Name: "Malaysia", Codes: []string{"MY"}},
	{Start: 958, End: 958, Name: "Macau", Codes: []string{"MO"}},
	{Start: 960, End: 969, Name: "GS1 Global Office", Note: "GTIN-8 allocations"},
	{Start: 977, End: 977, Name: "Serial publications (ISSN)"},
	{Start: 978, End: 979, Name: "Bookland (ISBN)"},
	{Start: 980, End: 980, Name: "Refund receipts"},
	{Start: 981, End: 984, Name: "Common currency coupons"},
}

// restrictedEAN8 covers GS1-8 prefixes starting with 0 or 2, which are
// reserved for restricted circulation numbers.
var restrictedEAN8 = PrefixRegion{Start: 0, End: 299, Name: "Restricted circulation (in-store)", Note: "RCN-8"}

// PrefixTable returns a copy of the GS1 prefix table ordered by Start.
func PrefixTable() []PrefixRegion {
	out := make([]PrefixRegion, len(prefixTable))
	for i, r := range prefixTable {
		r.Codes = slices.Clone(r.Codes)
		out[i] = r
	}
	return out
}

// LookupPrefix finds the range containing n.
func LookupPrefix(n int) (PrefixRegion, bool) {
	if n < 0 || n > 999 {
		return PrefixRegion{}, false
	}
	i := sort.Search(len(prefixTable), func(i int) bool {
		return prefixTable[i].End >= n
	})
	if i < len(prefixTable) && prefixTable[i].Contains(n) {
		r := prefixTable[i]
		r.Codes = slices.Clone(r.Codes)
		return r, true
	}
	return PrefixRegion{}, false
}

// ResolvePrefixRegion resolves a 3-digit prefix string. Anything that is not
// exactly three ASCII digits is treated as unassigned.
func ResolvePrefixRegion(prefix string) (PrefixRegion, bool) {
	if len(prefix) != 3 || checkNumeric(prefix, SymbologyUnknown) != nil {
		return PrefixRegion{}, false
	}
	n, _ := strconv.Atoi(prefix)
	return LookupPrefix(n)
}

// RegionName returns the region name for a 3-digit prefix, or UnknownRegion.
func RegionName(prefix string) string {
	if r, ok := ResolvePrefixRegion(prefix); ok {
		return r.Name
	}
	return UnknownRegion
}

func lookupRegion(prefix string, sym Symbology) (PrefixRegion, bool) {
	if sym == SymbologyEAN8 && (prefix[0] == '0' || prefix[0] == '2') {
		return restrictedEAN8, true
	}
	return ResolvePrefixRegion(prefix)
}
