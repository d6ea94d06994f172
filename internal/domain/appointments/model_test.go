package appointments

import (
	"errors"
	"net/http"
	"testing"
)

func TestStatusLabels(t *testing.T) {
	want := map[Status]string{
		StatusScheduled: "programada",
		StatusConfirmed: "confirmada",
		StatusCancelled: "cancelada",
		StatusCompleted: "completada",
	}
	for st, label := range want {
		if st.Label() != label {
			t.Fatalf("%s: expected %q, got %q", st, label, st.Label())
		}
		got, ok := ParseStatusLabel(" " + label + " ")
		if !ok || got != st {
			t.Fatalf("ParseStatusLabel(%q) = %s, %v", label, got, ok)
		}
		if got, ok := ParseStatusLabel(string(st)); !ok || got != st {
			t.Fatalf("internal value %s should parse", st)
		}
	}
	if _, ok := ParseStatusLabel("pendiente"); ok {
		t.Fatalf("unknown label should not parse")
	}
	if got, ok := ParseStatusLabel("CONFIRMADA"); !ok || got != StatusConfirmed {
		t.Fatalf("label parsing should ignore case")
	}
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2024-03-15", "2024-03-15T10:00:00.000Z", " 2024-03-15 "} {
		d, err := ParseDate(in)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", in, err)
		}
		if d.Format(DateLayout) != "2024-03-15" {
			t.Fatalf("ParseDate(%q) = %s", in, d)
		}
	}
	if _, err := ParseDate("15/03/2024"); err == nil {
		t.Fatalf("expected error for non ISO date")
	}
}

func TestValidTime(t *testing.T) {
	for _, ok := range []string{"09:00", "23:59", "10:30:00"} {
		if !ValidTime(ok) {
			t.Fatalf("%q should be valid", ok)
		}
	}
	for _, bad := range []string{"", "9", "24:00", "10h30"} {
		if ValidTime(bad) {
			t.Fatalf("%q should be invalid", bad)
		}
	}
}

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrNotPersisted, http.StatusBadRequest},
		{ErrNotFound, http.StatusNotFound},
		{ErrInvalidTransition, http.StatusConflict},
		{ErrCancelDeclined, http.StatusConflict},
		{ErrAttendedBeforeCompletion, http.StatusUnprocessableEntity},
		{&RejectionError{Op: "create", Message: "El horario seleccionado no está disponible"}, http.StatusUnprocessableEntity},
		{ErrTransport, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusCode(tc.err); got != tc.want {
			t.Fatalf("StatusCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}

	if ErrorText(errors.New("db password leaked")) != "internal error" {
		t.Fatalf("internal errors must not leak")
	}
	rej := &RejectionError{Op: "create", Message: "El horario seleccionado no está disponible"}
	if ErrorText(rej) != rej.Message {
		t.Fatalf("rejections should surface the directory message")
	}
}

func TestIsRejectionAndTransport(t *testing.T) {
	if !IsRejection(&RejectionError{Op: "x"}) || !IsRejection(ErrInvalidTransition) {
		t.Fatalf("expected rejection")
	}
	if IsRejection(ErrTransport) || !IsTransport(ErrTransport) {
		t.Fatalf("transport classification wrong")
	}
}

func TestParseOptionalID(t *testing.T) {
	if v, err := ParseOptionalID(""); err != nil || v != nil {
		t.Fatalf("empty should be nil, got %v %v", v, err)
	}
	if v, err := ParseOptionalID("42"); err != nil || v == nil || *v != 42 {
		t.Fatalf("expected 42, got %v %v", v, err)
	}
	for _, bad := range []string{"0", "-1", "abc"} {
		if _, err := ParseOptionalID(bad); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%q should be invalid", bad)
		}
	}
}
