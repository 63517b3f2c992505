package store

import (
	"bytes"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSetGetDelete(t *testing.T) {
	st := openTestStore(t)

	if err := st.Set("k1", []byte("v1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := st.Get("k1")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(v, []byte("v1")) {
		t.Fatalf("Get = %q", v)
	}

	if _, ok, err := st.Get("absent"); err != nil || ok {
		t.Fatalf("Get absent: ok=%v err=%v", ok, err)
	}

	if err := st.Delete("k1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := st.Get("k1"); ok {
		t.Fatal("key survived delete")
	}
	// deleting an absent key is fine
	if err := st.Delete("k1"); err != nil {
		t.Fatalf("Delete absent: %v", err)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	st := openTestStore(t)

	type rec struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	if err := st.SetJSON("r", rec{Name: "x", Count: 3}); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	var got rec
	ok, err := st.GetJSON("r", &got)
	if err != nil || !ok {
		t.Fatalf("GetJSON: ok=%v err=%v", ok, err)
	}
	if got.Name != "x" || got.Count != 3 {
		t.Fatalf("GetJSON = %+v", got)
	}

	var missing rec
	if ok, err := st.GetJSON("absent", &missing); err != nil || ok {
		t.Fatalf("GetJSON absent: ok=%v err=%v", ok, err)
	}
}

func TestListPrefixOrderedAndBounded(t *testing.T) {
	st := openTestStore(t)

	for appt := int64(1); appt <= 2; appt++ {
		for ev := int64(1); ev <= 3; ev++ {
			if err := st.Set(EventKey(appt, ev), []byte{byte(appt*10 + ev)}); err != nil {
				t.Fatalf("Set: %v", err)
			}
		}
	}

	vals, err := st.ListPrefix(EventPrefix(1))
	if err != nil {
		t.Fatalf("ListPrefix: %v", err)
	}
	if len(vals) != 3 {
		t.Fatalf("ListPrefix returned %d values, want 3", len(vals))
	}
	for i, want := range []byte{11, 12, 13} {
		if vals[i][0] != want {
			t.Fatalf("vals[%d] = %d, want %d (key order)", i, vals[i][0], want)
		}
	}
}

func TestDeletePrefix(t *testing.T) {
	st := openTestStore(t)

	for ev := int64(1); ev <= 4; ev++ {
		if err := st.Set(EventKey(9, ev), []byte("x")); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	if err := st.Set(MessageKey(9, 1), []byte("keep")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	n, err := st.DeletePrefix(EventPrefix(9))
	if err != nil {
		t.Fatalf("DeletePrefix: %v", err)
	}
	if n != 4 {
		t.Fatalf("DeletePrefix deleted %d, want 4", n)
	}
	if vals, _ := st.ListPrefix(MessagePrefix(9)); len(vals) != 1 {
		t.Fatal("unrelated prefix affected")
	}
}

func TestKeySchemeSortsNumerically(t *testing.T) {
	// zero-padded ids keep byte order equal to numeric order
	if EventKey(1, 2) >= EventKey(1, 10) {
		t.Fatal("event keys not numerically ordered")
	}
	if AppointmentKey(9) >= AppointmentKey(10) {
		t.Fatal("appointment keys not numerically ordered")
	}
}
