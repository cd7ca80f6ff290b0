package compute

import "testing"

func TestBatchOrdersDispatches(t *testing.T) {
	d := newCPUDispatcher()
	b := d.Batch()

	var order []string
	b.Dispatch("first", func() { order = append(order, "first") })
	b.Dispatch("second", func() { order = append(order, "second") })
	b.Wait()

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("expected in-order dispatch, got %v", order)
	}
}

func TestBatchElapsedRecordsEveryKernel(t *testing.T) {
	d := newCPUDispatcher()
	b := d.Batch()
	b.Dispatch("pyramid", func() {})
	b.Dispatch("dog", func() {})
	b.Wait()

	elapsed := b.Elapsed()
	if _, ok := elapsed["pyramid"]; !ok {
		t.Error("expected elapsed entry for pyramid kernel")
	}
	if _, ok := elapsed["dog"]; !ok {
		t.Error("expected elapsed entry for dog kernel")
	}
}

func TestBatchPanicsOnDispatchAfterWait(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic dispatching after Wait")
		}
	}()
	d := newCPUDispatcher()
	b := d.Batch()
	b.Wait()
	b.Dispatch("late", func() {})
}
