package extract

import (
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"
)

var justelHeadings = Headings{
	Title:    "## Titre",
	Text:     "## Texte",
	End:      []string{"## Signatures", "## Fiche des modifications"},
	Preamble: DefaultPreamble,
}

const sampleDoc = `[1A] ## Titre [1B]

1994021048

17 FEVRIER 1994. - Loi relative aux cultes.

[9A] ## Préambule [9B]

Vu la Constitution;

[3A] ## Texte [3B]

**TITLE**[TITRE Ier.] \- Dispositions générales

CHAPITRE Ier

Champ d'application

Art. 1er. La présente loi règle une matière visée à l'article 78.

Alinéa deux.

Section 1re. - Définitions

Art. 2. Pour l'application de la présente loi:

[TABLE_PLACEHOLDER_0000]

TITRE II. - Dispositions finales

Article 3. Entrée en vigueur.

[11A] ## Signatures [11B]

Donné à Bruxelles.
`

// ---------------------------------------------------------------------------
// TestParse
// ---------------------------------------------------------------------------

func TestParse(t *testing.T) {
	t.Parallel()

	doc := Parse(sampleDoc, justelHeadings)

	if doc.Title != "17 FEVRIER 1994. - Loi relative aux cultes." {
		t.Errorf("Title = %q", doc.Title)
	}
	if doc.Type != "loi" {
		t.Errorf("Type = %q, want loi", doc.Type)
	}
	if doc.Preamble != "Vu la Constitution;" {
		t.Errorf("Preamble = %q", doc.Preamble)
	}
	if got := doc.Articles(); got != 3 {
		t.Fatalf("Articles() = %d, want 3", got)
	}

	if len(doc.Hierarchy) != 2 {
		t.Fatalf("roots = %d, want 2 TITRE nodes", len(doc.Hierarchy))
	}
	titre := doc.Hierarchy[0]
	if titre.Type != "titre" || titre.Label != "TITRE Ier Dispositions générales" || titre.Metadata.Rank != RankTitre {
		t.Errorf("first root = %+v", titre)
	}

	chapitre := titre.Children[0]
	if chapitre.Type != "chapitre" || chapitre.Metadata.TitleContent != "Champ d'application" {
		t.Errorf("chapitre = %+v, want title taken from the next line", chapitre.Metadata)
	}
	if len(chapitre.Children) != 2 {
		t.Fatalf("chapitre children = %d, want article and section", len(chapitre.Children))
	}

	art1 := chapitre.Children[0]
	if art1.Label != "Art. 1er" || art1.Article == nil {
		t.Fatalf("art1 = %+v", art1)
	}
	if want := "La présente loi règle une matière visée à l'article 78.\nAlinéa deux."; art1.Article.MainText != want {
		t.Errorf("art1 text = %q, want %q", art1.Article.MainText, want)
	}

	section := chapitre.Children[1]
	if section.Type != "section" || len(section.Children) != 1 || section.Children[0].Metadata.ArticleRange != "2" {
		t.Errorf("section = %+v", section)
	}
	if text := section.Children[0].Article.MainText; !strings.HasSuffix(text, "[TABLE_PLACEHOLDER_0000]") {
		t.Errorf("art2 text = %q, want the table marker kept", text)
	}

	last := doc.Hierarchy[1].Children[0]
	if last.Article.ArticleNumber != "3" || last.Article.MainText != "Entrée en vigueur." {
		t.Errorf("art3 = %+v, want text cut before the signatures", last.Article)
	}
}

func TestParse_NoTextSection(t *testing.T) {
	t.Parallel()

	doc := Parse("## Titre\nArrêté royal\n", justelHeadings)
	if doc.Hierarchy == nil || len(doc.Hierarchy) != 0 {
		t.Errorf("Hierarchy = %v, want empty and non-nil", doc.Hierarchy)
	}
	if doc.Type != "arrete" {
		t.Errorf("Type = %q, want arrete", doc.Type)
	}
}

// ---------------------------------------------------------------------------
// TestHierarchy - Line classification
// ---------------------------------------------------------------------------

func TestHierarchy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		text      string
		wantRoots []string // root labels
		wantArts  int
	}{
		{
			name:      "articles without divisions",
			text:      "Art. 1. a\nArt. 2bis. b\nArticle unique. c",
			wantRoots: []string{"Art. 1", "Art. 2bis", "Art. unique"},
			wantArts:  3,
		},
		{
			name:      "prose starting with a division word",
			text:      "Art. 1. a\nSection de la loi\nTitre de séjour",
			wantRoots: []string{"Art. 1"},
			wantArts:  1,
		},
		{
			name:      "decimal article numbers",
			text:      "Art. 8.39. a\n**ARTICLE**[Art.] [9]. b",
			wantRoots: []string{"Art. 8.39", "Art. 9"},
			wantArts:  2,
		},
		{
			name:      "livre outranks titre",
			text:      "LIVRE 1. x\nTITRE 1. y\nArt. 1. z\nLIVRE 2. w",
			wantRoots: []string{"LIVRE 1 x", "LIVRE 2 w"},
			wantArts:  1,
		},
		{
			name:      "annexe without number",
			text:      "**ANNEXE**[1]\nArt. 1. a",
			wantRoots: []string{"ANNEXE 1"},
			wantArts:  1,
		},
		{
			name:      "text before any article is dropped",
			text:      "Intro.\n\nArt. 1. a",
			wantRoots: []string{"Art. 1"},
			wantArts:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			nodes := Hierarchy(tt.text)
			var labels []string
			for _, n := range nodes {
				labels = append(labels, n.Label)
			}
			if strings.Join(labels, "|") != strings.Join(tt.wantRoots, "|") {
				t.Errorf("roots = %q, want %q", labels, tt.wantRoots)
			}
			if got := (Document{Hierarchy: nodes}).Articles(); got != tt.wantArts {
				t.Errorf("Articles() = %d, want %d", got, tt.wantArts)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRecord - JSON shape
// ---------------------------------------------------------------------------

func TestRecord(t *testing.T) {
	t.Parallel()

	doc := Parse(strings.Replace(sampleDoc, "[TABLE_PLACEHOLDER_0000]", "<table><tr><td>x</td></tr></table>", 1), justelHeadings)
	data, err := Record(doc, Meta{
		Number:       "1994021048",
		Source:       "1994021048.md",
		Lang:         "fr",
		Extracted:    time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC),
		TablesFilled: 1,
	})
	if err != nil {
		t.Fatalf("Record() unexpected error: %v", err)
	}
	if !gjson.ValidBytes(data) {
		t.Fatalf("Record() produced invalid JSON: %s", data)
	}

	root := gjson.ParseBytes(data)
	for path, want := range map[string]string{
		"document_metadata.document_number":   "1994021048",
		"document_metadata.document_type":     "loi",
		"document_metadata.language":          "fr",
		"preamble":                            "Vu la Constitution;",
		"document_hierarchy.0.type":           "titre",
		"extraction_metadata.extraction_date": "2026-10-16T09:00:00Z",
		"extraction_metadata.source_file":     "1994021048.md",
		"extraction_metadata.articles":        "3",
		"extraction_metadata.tables_filled":   "1",
	} {
		if got := root.Get(path).String(); got != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}

	if !strings.Contains(string(data), "<table><tr><td>x</td></tr></table>") {
		t.Error("table markup was escaped in the record")
	}
	if !strings.HasPrefix(string(data), "{\n  \"document_metadata\"") {
		t.Errorf("record not indented or out of order: %.60s", data)
	}
}

func TestRecord_EmptyHierarchyIsArray(t *testing.T) {
	t.Parallel()

	data, err := Record(Parse("no sections", justelHeadings), Meta{Source: "x.md"})
	if err != nil {
		t.Fatalf("Record() unexpected error: %v", err)
	}
	h := gjson.GetBytes(data, "document_hierarchy")
	if !h.IsArray() || len(h.Array()) != 0 {
		t.Errorf("document_hierarchy = %s, want []", h.Raw)
	}
}
