package mqtt

import "testing"

func TestConnectWithEmptyBrokerIsNoop(t *testing.T) {
	h := New()
	if err := h.Connect(""); err != nil {
		t.Fatalf("Connect(\"\") = %v, want nil", err)
	}
	if err := h.Disconnect(); err != nil {
		t.Fatalf("Disconnect() on unconnected handler = %v, want nil", err)
	}
}

func TestServiceDropsMessagesWithoutBroker(t *testing.T) {
	h := New()
	if err := h.Connect(""); err != nil {
		t.Fatalf("Connect(\"\") = %v, want nil", err)
	}

	done := make(chan struct{})
	go func() {
		h.Service()
		close(done)
	}()

	h.C <- Message{Topic: "dcf77clockd/status", Payload: []byte("{}")}
	close(h.C)
	<-done
}

func TestServiceDropsMessagesWithEmptyTopic(t *testing.T) {
	h := New()

	done := make(chan struct{})
	go func() {
		h.Service()
		close(done)
	}()

	h.C <- Message{Topic: ""}
	close(h.C)
	<-done
}
