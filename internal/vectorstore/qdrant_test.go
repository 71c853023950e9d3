package vectorstore

import "testing"

func Test_PointUUID_Deterministic(t *testing.T) {
	t.Parallel()
	id := "site_docs_42_chunk_3"
	a := pointUUID(id)
	b := pointUUID(id)
	if a != b {
		t.Errorf("pointUUID(%q) not deterministic: %q != %q", id, a, b)
	}
}

func Test_PointUUID_Distinct(t *testing.T) {
	t.Parallel()
	a := pointUUID("doc1_chunk_0")
	b := pointUUID("doc1_chunk_1")
	if a == b {
		t.Errorf("pointUUID produced identical ids for distinct chunk ids: %q", a)
	}
}

func Test_PointUUID_Format(t *testing.T) {
	t.Parallel()
	got := pointUUID("doc_chunk_0")
	// 8-4-4-4-12 hex groups joined by hyphens, version 4 / variant 10.
	want := len("00000000-0000-0000-0000-000000000000")
	if len(got) != want {
		t.Fatalf("pointUUID length = %d, want %d (got %q)", len(got), want, got)
	}
	if got[14] != '4' {
		t.Errorf("pointUUID version nibble = %q, want '4'", got[14])
	}
}

func Test_BuildFilter_Empty(t *testing.T) {
	t.Parallel()
	f := buildFilter(SearchOptions{})
	if f != nil {
		t.Errorf("buildFilter with no predicates = %+v, want nil", f)
	}
}

func Test_BuildFilter_SiteAndFileTypes(t *testing.T) {
	t.Parallel()
	f := buildFilter(SearchOptions{SiteURL: "https://contoso.sharepoint.com/sites/eng", FileTypes: []string{"pdf", "docx"}})
	if f == nil {
		t.Fatal("buildFilter with predicates = nil, want non-nil")
	}
	if len(f.Must) != 2 {
		t.Errorf("buildFilter Must length = %d, want 2", len(f.Must))
	}
}
