package roadmap

import (
	"reflect"
	"strings"
	"testing"
)

func TestReadLocatesColumnsByHeader(t *testing.T) {
	csvDoc := `Referencia,Objetivo,Nivel de madurez
EDM01,Governance,2
APO01,Framework,4
`
	imp, err := Read(strings.NewReader(csvDoc))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(imp.Refs, []string{"EDM01", "APO01"}) {
		t.Fatalf("unexpected refs %v", imp.Refs)
	}
	if imp.Levels["EDM01"] != 2 || imp.Levels["APO01"] != 4 {
		t.Fatalf("unexpected levels %v", imp.Levels)
	}
}

func TestReadAlternativeHeaders(t *testing.T) {
	cases := []string{
		"ID,Capability Level\nEDM01,3\n",
		"id objetivo,nivel\nEDM01,3\n",
		"OGG ref,Madurez objetivo\nEDM01,3\n",
	}
	for _, doc := range cases {
		imp, err := Read(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("read %q: %v", doc, err)
		}
		if len(imp.Refs) != 1 || imp.Refs[0] != "EDM01" || imp.Levels["EDM01"] != 3 {
			t.Fatalf("unexpected import for %q: %+v", doc, imp)
		}
	}
}

func TestReadMissingColumnsFails(t *testing.T) {
	if _, err := Read(strings.NewReader("Objetivo,Comentario\nA,B\n")); err == nil {
		t.Fatalf("expected error when the reference column is missing")
	}
	if _, err := Read(strings.NewReader("Referencia,Comentario\nEDM01,B\n")); err == nil {
		t.Fatalf("expected error when the level column is missing")
	}
}

func TestReadSkipsBlanksAndDeduplicates(t *testing.T) {
	csvDoc := `ref,nivel
EDM01,2
,5
EDM01,4
DSS05,
`
	imp, err := Read(strings.NewReader(csvDoc))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(imp.Refs, []string{"EDM01", "DSS05"}) {
		t.Fatalf("unexpected refs %v", imp.Refs)
	}
	// First occurrence wins; the blank DSS05 level stays unset.
	if imp.Levels["EDM01"] != 2 {
		t.Fatalf("expected first EDM01 level to win, got %d", imp.Levels["EDM01"])
	}
	if _, ok := imp.Levels["DSS05"]; ok {
		t.Fatalf("expected no level for DSS05")
	}
}

func TestReadWarnsOnNonNumericLevel(t *testing.T) {
	imp, err := Read(strings.NewReader("ref,nivel\nEDM01,alto\n"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(imp.Warnings) != 1 || !strings.Contains(imp.Warnings[0], "EDM01") {
		t.Fatalf("expected one warning naming the ref, got %v", imp.Warnings)
	}
	if _, ok := imp.Levels["EDM01"]; ok {
		t.Fatalf("expected unparseable level to stay unset")
	}
}

func TestReadEmptyInputs(t *testing.T) {
	if _, err := Read(strings.NewReader("")); err == nil {
		t.Fatalf("expected error for empty file")
	}
	if _, err := Read(strings.NewReader("ref,nivel\n")); err == nil {
		t.Fatalf("expected error when no references parse")
	}
}

func TestReadToleratesRaggedRows(t *testing.T) {
	csvDoc := "ref,nivel,comentario\nEDM01,2\nAPO01,3,extra,more\n"
	imp, err := Read(strings.NewReader(csvDoc))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(imp.Refs) != 2 {
		t.Fatalf("expected 2 refs from ragged rows, got %v", imp.Refs)
	}
}
