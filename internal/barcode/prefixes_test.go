package barcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestPrefixTable_Ordered(t *testing.T) {
	table := PrefixTable()
	require.NotEmpty(t, table)

	prevEnd := -1
	for _, r := range table {
		assert.GreaterOrEqual(t, r.Start, 0)
		assert.LessOrEqual(t, r.End, 999)
		assert.LessOrEqual(t, r.Start, r.End, r.Name)
		assert.Greater(t, r.Start, prevEnd, "range %s overlaps its predecessor", r.Range())
		assert.NotEmpty(t, r.Name)
		prevEnd = r.End
	}
}

func TestPrefixTable_EveryPrefixConsistent(t *testing.T) {
	for n := 0; n <= 999; n++ {
		prefix := pad3(n)
		r, ok := ResolvePrefixRegion(prefix)
		if ok {
			assert.True(t, r.Contains(n), prefix)
			assert.Equal(t, r.Name, RegionName(prefix))
		} else {
			assert.Equal(t, UnknownRegion, RegionName(prefix))
		}
	}
}

func TestResolvePrefixRegion(t *testing.T) {
	tests := []struct {
		prefix string
		name   string
		ok     bool
	}{
		{"000", "USA/Canada", true},
		{"001", "USA/Canada", true},
		{"139", "USA/Canada", true},
		{"140", UnknownRegion, false},
		{"400", "Germany", true},
		{"440", "Germany", true},
		{"471", "Taiwan", true},
		{"489", "Hong Kong", true},
		{"690", "China", true},
		{"978", "Bookland (ISBN)", true},
		{"999", UnknownRegion, false},
		{"99", UnknownRegion, false},
		{"4a0", UnknownRegion, false},
		{"", UnknownRegion, false},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			r, ok := ResolvePrefixRegion(tt.prefix)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.name, r.Name)
			}
			assert.Equal(t, tt.name, RegionName(tt.prefix))
		})
	}
}

func TestLookupPrefix_OutOfRange(t *testing.T) {
	_, ok := LookupPrefix(-1)
	assert.False(t, ok)
	_, ok = LookupPrefix(1000)
	assert.False(t, ok)
}

func TestPrefixTable_ReturnsCopy(t *testing.T) {
	table := PrefixTable()
	table[0].Name = "changed"
	table[0].Codes[0] = "XX"

	r, ok := LookupPrefix(0)
	require.True(t, ok)
	assert.Equal(t, "USA/Canada", r.Name)
	assert.Equal(t, []string{"US", "CA"}, r.Codes)
}

func TestPrefixRegion_Range(t *testing.T) {
	r, _ := LookupPrefix(400)
	assert.Equal(t, "400-440", r.Range())
	r, _ = LookupPrefix(471)
	assert.Equal(t, "471", r.Range())
	r, _ = LookupPrefix(5)
	assert.Equal(t, "000-019", r.Range())
}

func TestPrefixRegion_LocalizedName(t *testing.T) {
	germany, _ := LookupPrefix(400)
	assert.Equal(t, "Germany", germany.LocalizedName(language.English))
	assert.Equal(t, "Deutschland", germany.LocalizedName(language.German))

	zh := germany.LocalizedName(language.MustParse("zh-Hant"))
	assert.NotEmpty(t, zh)
	assert.NotEqual(t, "Germany", zh)

	usca, _ := LookupPrefix(1)
	assert.Contains(t, usca.LocalizedName(language.German), " / ")

	isbn, _ := LookupPrefix(978)
	assert.Equal(t, "Bücher (ISBN)", isbn.LocalizedName(language.German))
	assert.Equal(t, "Bookland (ISBN)", isbn.LocalizedName(language.French))
}

func TestPrefixRegion_LocalizedName_TraditionalChinese(t *testing.T) {
	zhHant := language.MustParse("zh-Hant")

	tests := []struct {
		prefix int
		want   string
	}{
		{prefix: 471, want: "台灣"},
		{prefix: 200, want: "店內碼 / 限制發行"},
		{prefix: 45, want: "店內碼 / 限制發行"},
		{prefix: 55, want: "優惠券"},
		{prefix: 981, want: "共同貨幣優惠券"},
		{prefix: 978, want: "書籍 (ISBN)"},
	}
	for _, tt := range tests {
		r, ok := LookupPrefix(tt.prefix)
		require.True(t, ok, tt.prefix)
		assert.Equal(t, tt.want, r.LocalizedName(zhHant), tt.prefix)
	}

	drugs, _ := LookupPrefix(30)
	assert.Contains(t, drugs.LocalizedName(zhHant), "(藥品)")
	assert.NotContains(t, drugs.LocalizedName(zhHant), "drugs")

	usca, _ := LookupPrefix(0)
	assert.Equal(t, "UPC-A 相容", usca.LocalizedNote(zhHant))
	assert.Equal(t, "UPC-A compatible", usca.LocalizedNote(language.English))

	assert.Equal(t, "未知地區 / 全球通用", LocalizedUnknownRegion(zhHant))
	assert.Equal(t, "未知地區 / 全球通用", LocalizedUnknownRegion(language.MustParse("zh-TW")))
	assert.Equal(t, UnknownRegion, LocalizedUnknownRegion(language.English))
}

func TestLocalizedNames_CoverTable(t *testing.T) {
	zhHant := language.MustParse("zh-Hant")
	for _, r := range PrefixTable() {
		name := r.LocalizedName(zhHant)
		if len(r.Codes) == 0 {
			assert.NotEqual(t, r.Name, name, "untranslated range %s", r.Range())
		}
		if r.Note != "" && r.Note != "RCN-8" {
			assert.NotEqual(t, r.Note, r.LocalizedNote(zhHant), "untranslated note %s", r.Range())
		}
	}
}

func TestDecodedBarcode_LocalizedRegionName(t *testing.T) {
	d, err := Decode("4006381333931", SymbologyEAN13)
	require.NoError(t, err)
	assert.Equal(t, "Deutschland", d.LocalizedRegionName(language.German))

	d, err = Decode("9990000000005", SymbologyEAN13)
	require.NoError(t, err)
	assert.Equal(t, "Unbekannt / global reserviert", d.LocalizedRegionName(language.German))
	assert.Equal(t, "未知地區 / 全球通用", d.LocalizedRegionName(language.MustParse("zh-Hant")))
	assert.Equal(t, UnknownRegion, d.LocalizedRegionName(language.English))
}
