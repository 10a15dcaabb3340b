package signal

import "testing"

func TestDecodeRejectsMissingRequiredFields(t *testing.T) {
	cases := []struct {
		name string
		data string
		ok   bool
	}{
		{name: "offer complete", data: `{"type":"offer","target":"bob","sdpOffer":"x","callType":"audio"}`, ok: true},
		{name: "offer room addressed", data: `{"type":"offer","roomId":"r1","sdpOffer":"x","callType":"video"}`, ok: true},
		{name: "offer missing sdp", data: `{"type":"offer","target":"bob","callType":"audio"}`, ok: false},
		{name: "offer missing callType", data: `{"type":"offer","target":"bob","sdpOffer":"x"}`, ok: false},
		{name: "offer bad callType", data: `{"type":"offer","target":"bob","sdpOffer":"x","callType":"hologram"}`, ok: false},
		{name: "offer unaddressed", data: `{"type":"offer","sdpOffer":"x","callType":"audio"}`, ok: false},
	}
	for _, tc := range cases {
		_, err := decode[offerPayload]([]byte(tc.data))
		if (err == nil) != tc.ok {
			t.Fatalf("%s: err = %v, want ok=%v", tc.name, err, tc.ok)
		}
	}
}

func TestDecodeAnswerAndCandidate(t *testing.T) {
	if _, err := decode[answerPayload]([]byte(`{"target":"alice","sdpAnswer":"y"}`)); err != nil {
		t.Fatalf("valid answer rejected: %v", err)
	}
	if _, err := decode[answerPayload]([]byte(`{"target":"alice"}`)); err == nil {
		t.Fatal("answer without sdpAnswer must be rejected")
	}
	if _, err := decode[candidatePayload]([]byte(`{"roomId":"r1","candidate":{"candidate":"c","sdpMid":"0"}}`)); err != nil {
		t.Fatalf("valid candidate rejected: %v", err)
	}
	if _, err := decode[candidatePayload]([]byte(`{"roomId":"r1"}`)); err == nil {
		t.Fatal("candidate without candidate body must be rejected")
	}
}

func TestDecodeMediaToggleKeepsExplicitFalse(t *testing.T) {
	p, err := decode[mediaTogglePayload]([]byte(`{"roomId":"r1","mediaKind":"video","enabled":false}`))
	if err != nil {
		t.Fatalf("explicit false rejected: %v", err)
	}
	if p.Enabled == nil || *p.Enabled {
		t.Fatal("enabled=false must survive decoding")
	}
	if _, err := decode[mediaTogglePayload]([]byte(`{"roomId":"r1","mediaKind":"video"}`)); err == nil {
		t.Fatal("media-toggle without enabled must be rejected")
	}
}

func TestAddressedTargetResolution(t *testing.T) {
	p, err := decode[endCallPayload]([]byte(`{"roomId":"r1"}`))
	if err != nil {
		t.Fatalf("room end-call rejected: %v", err)
	}
	if tgt := p.target(); !tgt.IsRoom() || tgt.Room != "r1" {
		t.Fatalf("target = %+v; want room r1", tgt)
	}

	p, err = decode[endCallPayload]([]byte(`{"target":"bob"}`))
	if err != nil {
		t.Fatalf("direct end-call rejected: %v", err)
	}
	if tgt := p.target(); tgt.IsRoom() || tgt.User != "bob" {
		t.Fatalf("target = %+v; want user bob", tgt)
	}
}

func TestDecodeRegisterAndTyping(t *testing.T) {
	if _, err := decode[registerPayload]([]byte(`{"userId":"alice"}`)); err != nil {
		t.Fatalf("valid register rejected: %v", err)
	}
	if _, err := decode[registerPayload]([]byte(`{}`)); err == nil {
		t.Fatal("register without userId must be rejected")
	}
	p, err := decode[typingPayload]([]byte(`{"target":"bob","isTyping":false}`))
	if err != nil || p.IsTyping == nil || *p.IsTyping {
		t.Fatalf("typing decode = %+v, %v", p, err)
	}
}

func TestDecodeMessageRead(t *testing.T) {
	if _, err := decode[messageReadPayload]([]byte(`{"messageId":"m-1","contactId":"bob"}`)); err != nil {
		t.Fatalf("valid message-read rejected: %v", err)
	}
	if _, err := decode[messageReadPayload]([]byte(`{"contactId":"bob"}`)); err == nil {
		t.Fatal("message-read without messageId must be rejected")
	}
	if _, err := decode[messageReadPayload]([]byte(`{"messageId":"m-1"}`)); err == nil {
		t.Fatal("message-read without contactId must be rejected")
	}
}
