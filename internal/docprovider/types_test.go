package docprovider

import "testing"

func Test_FileTypeFromExtension(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		want FileType
	}{
		{"report.pdf", FileTypePDF},
		{"REPORT.PDF", FileTypePDF},
		{"notes.doc", FileTypeDoc},
		{"notes.docx", FileTypeDocx},
		{"page.aspx", FileTypeAspx},
		{"archive.zip", FileTypeUnknown},
		{"noext", FileTypeUnknown},
		{"path/to/file.PDF", FileTypePDF},
	}
	for _, tc := range cases {
		if got := FileTypeFromExtension(tc.name); got != tc.want {
			t.Errorf("FileTypeFromExtension(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}
