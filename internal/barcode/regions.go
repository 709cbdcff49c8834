package barcode

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// ParseLanguage parses a BCP 47 tag such as "de" or "zh-Hant". An empty
// string yields English.
func ParseLanguage(s string) (language.Tag, error) {
	if strings.TrimSpace(s) == "" {
		return language.English, nil
	}
	return language.Parse(s)
}

// regionMessages translates the labels that have no ISO 3166 code behind
// them: special-purpose ranges, qualifiers, notes and UnknownRegion.
var regionMessages = []struct {
	key, de, zhHant string
}{
	{UnknownRegion, "Unbekannt / global reserviert", "未知地區 / 全球通用"},
	{"Restricted circulation (in-store)", "Eingeschränkte Verwendung (Ladeninterne Nummer)", "店內碼 / 限制發行"},
	{"Coupons", "Coupons", "優惠券"},
	{"Common currency coupons", "Coupons in Gemeinschaftswährung", "共同貨幣優惠券"},
	{"Refund receipts", "Pfandbons", "退款收據"},
	{"Serial publications (ISSN)", "Zeitschriften (ISSN)", "期刊 (ISSN)"},
	{"Bookland (ISBN)", "Bücher (ISBN)", "書籍 (ISBN)"},
	{"GS1 Global Office", "GS1 Global Office", "GS1 全球總部"},
	{"drugs", "Arzneimittel", "藥品"},
	{"UPC-A compatible", "UPC-A-kompatibel", "UPC-A 相容"},
	{"National Drug Code", "National Drug Code", "美國國家藥品代碼"},
	{"Includes Faroe Islands and Greenland", "Einschließlich Färöer und Grönland", "包含法羅群島及格陵蘭"},
	{"Includes San Marino and Vatican City", "Einschließlich San Marino und Vatikanstadt", "包含聖馬利諾及梵蒂岡"},
	{"Special applications", "Sonderanwendungen", "特殊應用"},
	{"EPC General Manager Numbers", "EPC General Manager Numbers", "EPC 總管理者編號"},
	{"GTIN-8 allocations", "GTIN-8-Vergaben", "GTIN-8 分配"},
	{"RCN-8", "RCN-8", "RCN-8"},
}

var regionCatalog = newRegionCatalog()

func newRegionCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, m := range regionMessages {
		if err := b.SetString(language.German, m.key, m.de); err != nil {
			panic(err)
		}
		if err := b.SetString(language.TraditionalChinese, m.key, m.zhHant); err != nil {
			panic(err)
		}
	}
	return b
}

// translate looks key up in the region catalog. Languages without a close
// match get key back unchanged.
func translate(key string, tag language.Tag) string {
	if key == "" || isEnglish(tag) {
		return key
	}
	_, idx, conf := regionCatalog.Matcher().Match(tag)
	if conf < language.High {
		return key
	}
	supported := regionCatalog.Languages()
	if idx < 0 || idx >= len(supported) {
		return key
	}
	return message.NewPrinter(supported[idx], message.Catalog(regionCatalog)).Sprintf(key)
}

// LocalizedUnknownRegion returns UnknownRegion in the given language.
func LocalizedUnknownRegion(tag language.Tag) string {
	return translate(UnknownRegion, tag)
}

// LocalizedName returns the region name in the given language. Country
// ranges use CLDR display names joined with " / " plus the translated
// qualifier. Other ranges go through the message catalog. Anything without a
// translation falls back to Name.
func (r PrefixRegion) LocalizedName(tag language.Tag) string {
	if isEnglish(tag) {
		return r.Name
	}
	if len(r.Codes) == 0 {
		return translate(r.Name, tag)
	}

	namer := display.Regions(tag)
	if namer == nil {
		return r.Name
	}
	names := make([]string, 0, len(r.Codes))
	for _, code := range r.Codes {
		region, err := language.ParseRegion(code)
		if err != nil {
			return r.Name
		}
		name := namer.Name(region)
		if name == "" {
			return r.Name
		}
		names = append(names, name)
	}

	name := strings.Join(names, " / ")
	if r.Qualifier != "" {
		name += " (" + translate(r.Qualifier, tag) + ")"
	}
	return name
}

// LocalizedNote returns Note in the given language.
func (r PrefixRegion) LocalizedNote(tag language.Tag) string {
	return translate(r.Note, tag)
}

// LocalizedRegionName returns the region name of a decoded code in the given
// language. Unassigned prefixes yield the localized UnknownRegion.
func (d *DecodedBarcode) LocalizedRegionName(tag language.Tag) string {
	if d.Region == nil {
		return LocalizedUnknownRegion(tag)
	}
	return d.Region.LocalizedName(tag)
}

func isEnglish(tag language.Tag) bool {
	base, _ := tag.Base()
	return base.String() == "en"
}
