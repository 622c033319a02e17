package tracking_test

import (
	"context"
	"errors"
	"testing"

	"parcel-delivery/apperror"
	trackingModel "parcel-delivery/models/tracking"
	trackingService "parcel-delivery/services/tracking"
	"parcel-delivery/testutil"
	trackingTypes "parcel-delivery/types/tracking"
)

func TestRecordRequiresFields(t *testing.T) {
	db := testutil.NewDB(t)
	svc := trackingService.NewTrackingService(db)

	tests := []struct {
		name string
		req  trackingTypes.RecordRequest
	}{
		{"missing tracking id", trackingTypes.RecordRequest{ParcelID: "p1", Status: "picked_up"}},
		{"missing parcel id", trackingTypes.RecordRequest{TrackingID: "TRK-1", Status: "picked_up"}},
		{"missing status", trackingTypes.RecordRequest{TrackingID: "TRK-1", ParcelID: "p1"}},
		{"blank status", trackingTypes.RecordRequest{TrackingID: "TRK-1", ParcelID: "p1", Status: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), tt.req)
			if !errors.Is(err, apperror.ErrInvalidArgument) {
				t.Fatalf("error = %v, want InvalidArgument", err)
			}
		})
	}

	var count int64
	db.Model(&trackingModel.Event{}).Count(&count)
	if count != 0 {
		t.Fatalf("events inserted = %d, want 0", count)
	}
}

func TestRecordDefaultsLocationAndLists(t *testing.T) {
	db := testutil.NewDB(t)
	svc := trackingService.NewTrackingService(db)
	ctx := context.Background()

	firstID, err := svc.Record(ctx, trackingTypes.RecordRequest{TrackingID: "TRK-1", ParcelID: "p1", Status: "created"})
	if err != nil || firstID == "" {
		t.Fatalf("Record() = %q, %v", firstID, err)
	}
	if _, err := svc.Record(ctx, trackingTypes.RecordRequest{TrackingID: "TRK-1", ParcelID: "p1", Status: "in_transit", Location: "Dhaka hub"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if _, err := svc.Record(ctx, trackingTypes.RecordRequest{TrackingID: "TRK-2", ParcelID: "p2", Status: "created"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	events, err := svc.ListByTrackingID(ctx, "TRK-1")
	if err != nil {
		t.Fatalf("ListByTrackingID() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].ID != firstID || events[0].Location != trackingModel.DefaultLocation {
		t.Errorf("first event = %+v, want id %s with location Unknown", events[0], firstID)
	}
	if events[1].Location != "Dhaka hub" {
		t.Errorf("second location = %q", events[1].Location)
	}
	if events[0].Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}
