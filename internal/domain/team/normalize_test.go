package team

import "testing"

func TestParseRawName(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		wantName string
		wantYear int
		wantGdr  string
	}{
		{
			name:     "roster code with year gender suffix",
			raw:      "7115 Riverside SC 2015B",
			wantName: "riverside",
			wantYear: 2015,
			wantGdr:  GenderBoys,
		},
		{
			name:     "alphanumeric roster code",
			raw:      "711A Riverside SC 2015B",
			wantName: "riverside",
			wantYear: 2015,
			wantGdr:  GenderBoys,
		},
		{
			name:     "gender prefix short year",
			raw:      "Union KC Jr Elite B15",
			wantName: "union kc jr elite",
			wantYear: 2015,
			wantGdr:  GenderBoys,
		},
		{
			name:     "girls short suffix",
			raw:      "Sporting Blue Valley 14G",
			wantName: "sporting blue valley",
			wantYear: 2014,
			wantGdr:  GenderGirls,
		},
		{
			name:     "bare birth year is not a roster code",
			raw:      "2015 United",
			wantName: "united",
			wantYear: 2015,
		},
		{
			name:     "bracketed qualifier dropped",
			raw:      "Tonka United (Premier) 2012B",
			wantName: "tonka united",
			wantYear: 2012,
			wantGdr:  GenderBoys,
		},
		{
			name:     "punctuation flattened",
			raw:      "KC Athletics - Red/White",
			wantName: "kc athletics red white",
		},
		{
			name:     "gender words",
			raw:      "Legends Boys Academy",
			wantName: "legends academy",
			wantGdr:  GenderBoys,
		},
		{
			name:     "boilerplate vocabulary removed",
			raw:      "FC Wichita Soccer Club",
			wantName: "wichita",
		},
		{
			name:     "empty input",
			raw:      "   ",
			wantName: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseRawName(tc.raw, nil)
			if got.NormalizedName != tc.wantName {
				t.Fatalf("normalized name = %q, want %q", got.NormalizedName, tc.wantName)
			}
			if got.BirthYear != tc.wantYear {
				t.Fatalf("birth year = %d, want %d", got.BirthYear, tc.wantYear)
			}
			if got.Gender != tc.wantGdr {
				t.Fatalf("gender = %q, want %q", got.Gender, tc.wantGdr)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	raws := []string{
		"7115 Riverside SC 2015B",
		"Union KC Jr Elite B15",
		"FC Wichita Soccer Club",
		"Tonka United (Premier) 2012B",
		"2015B 7a1b United",
		"KC Athletics - Red/White",
	}

	for _, raw := range raws {
		once := Normalize(raw, nil)
		twice := Normalize(once, nil)
		if once != twice {
			t.Fatalf("Normalize not idempotent for %q: %q then %q", raw, once, twice)
		}
	}
}

func TestNormalizeCustomVocabulary(t *testing.T) {
	got := Normalize("Riverside Rush Academy", []string{"academy"})
	if got != "riverside rush" {
		t.Fatalf("normalized name = %q, want %q", got, "riverside rush")
	}

	// empty (non-nil) vocabulary keeps everything
	got = Normalize("FC Wichita", []string{})
	if got != "fc wichita" {
		t.Fatalf("normalized name = %q, want %q", got, "fc wichita")
	}
}
