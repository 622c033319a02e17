package parcel_test

import (
	"testing"

	parcelTypes "parcel-delivery/types/parcel"
)

func TestParseCreateRequestSplitsKnownAndExtraKeys(t *testing.T) {
	body := []byte(`{"title":"Lamp","cost":12.5,"trackingId":"TRK-1","transactionId":"T1","fragile":true,"color":"red"}`)

	req, err := parcelTypes.ParseCreateRequest(body)
	if err != nil {
		t.Fatalf("ParseCreateRequest: %v", err)
	}
	if req.Title != "Lamp" || req.Cost != 12.5 || req.TrackingID != "TRK-1" {
		t.Errorf("typed fields = %+v", req)
	}
	for _, key := range []string{"trackingId", "transactionId", "title"} {
		if _, ok := req.Extra[key]; ok {
			t.Errorf("%s kept in extra", key)
		}
	}
	if len(req.Extra) != 2 || string(req.Extra["fragile"]) != "true" || string(req.Extra["color"]) != `"red"` {
		t.Errorf("extra = %v", req.Extra)
	}
}

func TestParseCreateRequestRejectsMalformedBody(t *testing.T) {
	if _, err := parcelTypes.ParseCreateRequest([]byte(`{"title":`)); err == nil {
		t.Fatal("expected error for truncated body")
	}
}
