package kerr

import (
	"errors"
	"testing"
)

func Test_KindString(t *testing.T) {
	t.Parallel()
	cases := []struct {
		k    Kind
		want string
	}{
		{KindInvalidInput, "invalid_input"},
		{KindUnauthenticated, "unauthenticated"},
		{KindForbidden, "forbidden"},
		{KindNotFound, "not_found"},
		{KindUpstream, "upstream"},
		{KindInternal, "internal"},
		{KindUnknown, "unknown"},
	}
	for _, tc := range cases {
		if got := tc.k.String(); got != tc.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tc.k, got, tc.want)
		}
	}
}

func Test_New_NilPassthrough(t *testing.T) {
	t.Parallel()
	if err := New("op", KindInternal, nil); err != nil {
		t.Errorf("New with nil err = %v, want nil", err)
	}
}

func Test_New_Unwrap(t *testing.T) {
	t.Parallel()
	inner := errors.New("boom")
	err := New("vectorstore.Upsert", KindUpstream, inner)
	if !errors.Is(err, inner) {
		t.Error("New(...) does not unwrap to the original error")
	}
}

func Test_KindOf(t *testing.T) {
	t.Parallel()
	err := New("op", KindForbidden, errors.New("no access"))
	if got := KindOf(err); got != KindForbidden {
		t.Errorf("KindOf = %v, want KindForbidden", got)
	}
}

func Test_KindOf_ForeignError(t *testing.T) {
	t.Parallel()
	if got := KindOf(errors.New("plain")); got != KindInternal {
		t.Errorf("KindOf(plain error) = %v, want KindInternal", got)
	}
}

func Test_KindOf_Nil(t *testing.T) {
	t.Parallel()
	if got := KindOf(nil); got != KindUnknown {
		t.Errorf("KindOf(nil) = %v, want KindUnknown", got)
	}
}

func Test_Newf_FormatsMessage(t *testing.T) {
	t.Parallel()
	err := Newf("embedder.EmbedAll", KindInternal, "expected %d, got %d", 3, 1)
	var ke *Error
	if !errors.As(err, &ke) {
		t.Fatal("Newf did not produce a *Error")
	}
	if ke.Err.Error() != "expected 3, got 1" {
		t.Errorf("Newf message = %q, want %q", ke.Err.Error(), "expected 3, got 1")
	}
}
