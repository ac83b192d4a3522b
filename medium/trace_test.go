package medium

import "testing"

func TestTraceInactiveRecordsNothing(t *testing.T) {
	tr := NewTrace(false)
	tr.Record(1.0, &Frame{Cookie: 1}, "enqueue")
	if len(tr.Records()) != 0 {
		t.Fatalf("expected an inactive trace to record nothing")
	}
}

func TestTraceActiveRecordsInOrder(t *testing.T) {
	tr := NewTrace(true)
	tr.Record(1.0, &Frame{Cookie: 1, AC: ACVO}, "enqueue")
	tr.Record(2.0, &Frame{Cookie: 1, AC: ACVO}, "deliver")

	records := tr.Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Op != "enqueue" || records[1].Op != "deliver" {
		t.Fatalf("expected records in insertion order, got %+v", records)
	}
}
