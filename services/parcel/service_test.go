package parcel_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"parcel-delivery/apperror"
	"parcel-delivery/constants"
	parcelModel "parcel-delivery/models/parcel"
	riderModel "parcel-delivery/models/rider"
	trackingModel "parcel-delivery/models/tracking"
	parcelService "parcel-delivery/services/parcel"
	"parcel-delivery/testutil"
	parcelTypes "parcel-delivery/types/parcel"

	"gorm.io/gorm"
)

func createParcel(t *testing.T, svc *parcelService.Service, owner, status string, created time.Time) string {
	t.Helper()
	res, err := svc.Create(context.Background(), parcelTypes.CreateRequest{Title: "box", CreatedBy: owner, Status: status}, owner)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	svc.DB.Model(&parcelModel.Parcel{}).Where("id = ?", res.InsertedID).Update("creation_date", created)
	return res.InsertedID
}

func TestCreateKeepsExtraFieldsAndDefaults(t *testing.T) {
	db := testutil.NewDB(t)
	svc := parcelService.NewParcelService(db, nil)

	body := []byte(`{"title":"Docs","type":"document","weight":1.5,"fragile":true,"payment_status":"Paid","notes":{"floor":3}}`)
	req, err := parcelTypes.ParseCreateRequest(body)
	if err != nil {
		t.Fatalf("ParseCreateRequest() error = %v", err)
	}

	res, err := svc.Create(context.Background(), req, "owner@x.com")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !strings.HasPrefix(res.TrackingID, "TRK-") {
		t.Errorf("tracking id = %q, want generated TRK- id", res.TrackingID)
	}

	p, err := svc.Get(context.Background(), res.InsertedID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.CreatedBy != "owner@x.com" || p.Status != parcelModel.StatusPending || p.PaymentStatus != parcelModel.PaymentStatusUnpaid {
		t.Errorf("parcel = %+v", p)
	}

	var details map[string]json.RawMessage
	if err := json.Unmarshal(p.Details, &details); err != nil {
		t.Fatalf("details: %v", err)
	}
	if _, ok := details["fragile"]; !ok {
		t.Error("extra field fragile not kept")
	}
	if _, ok := details["payment_status"]; ok {
		t.Error("server owned payment_status must not be stored from the body")
	}
}

func TestListFiltersAndOrdersNewestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	svc := parcelService.NewParcelService(db, nil)
	ctx := context.Background()

	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)
	oldest := createParcel(t, svc, "a@x.com", "pending", base.AddDate(0, 0, -5))
	middle := createParcel(t, svc, "a@x.com", "pending", base)
	newest := createParcel(t, svc, "a@x.com", "Paid", base.AddDate(0, 0, 2))
	createParcel(t, svc, "b@x.com", "pending", base)

	all, err := svc.List(ctx, parcelTypes.ListFilter{Email: "a@x.com"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 || all[0].ID != newest || all[2].ID != oldest {
		t.Fatalf("order = %v, want newest first", ids(all))
	}

	pending, _ := svc.List(ctx, parcelTypes.ListFilter{Email: "a@x.com", Status: "pending"})
	if len(pending) != 2 {
		t.Errorf("pending = %d, want 2", len(pending))
	}

	ranged, err := svc.List(ctx, parcelTypes.ListFilter{From: "2024-03-09", To: "2024-03-10"})
	if err != nil {
		t.Fatalf("ranged List() error = %v", err)
	}
	if len(ranged) != 2 {
		t.Errorf("ranged = %v, want the two parcels created on 2024-03-10", ids(ranged))
	}
	for _, p := range ranged {
		if p.ID == oldest || p.ID == newest {
			t.Errorf("parcel %s outside range returned", p.ID)
		}
	}
	_ = middle

	if _, err := svc.List(ctx, parcelTypes.ListFilter{From: "not a date"}); !errors.Is(err, apperror.ErrInvalidArgument) {
		t.Errorf("bad date error = %v, want InvalidArgument", err)
	}
}

func ids(parcels []parcelModel.Parcel) []string {
	out := make([]string, len(parcels))
	for i, p := range parcels {
		out[i] = p.ID
	}
	return out
}

func TestGetAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	svc := parcelService.NewParcelService(db, nil)
	ctx := context.Background()

	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want NotFound", err)
	}

	id := createParcel(t, svc, "a@x.com", "pending", time.Now())
	db.Create(&trackingModel.Event{TrackingID: "TRK-X", ParcelID: id, Status: "created", Timestamp: time.Now()})

	deleted, err := svc.Delete(ctx, id)
	if err != nil || deleted != 1 {
		t.Fatalf("Delete() = %d, %v", deleted, err)
	}
	if _, err := svc.Get(ctx, id); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("deleted parcel still readable: %v", err)
	}

	var events int64
	db.Model(&trackingModel.Event{}).Where("parcel_id = ?", id).Count(&events)
	if events != 1 {
		t.Errorf("tracking events = %d, deleting a parcel must not cascade", events)
	}

	if _, err := svc.Delete(ctx, id); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want NotFound", err)
	}
}

func paidParcel(t *testing.T, db *gorm.DB, svc *parcelService.Service) string {
	t.Helper()
	id := createParcel(t, svc, "a@x.com", "pending", time.Now())
	db.Model(&parcelModel.Parcel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status": parcelModel.StatusPaid, "payment_status": parcelModel.PaymentStatusPaid,
	})
	return id
}

func TestAssignRiderAndDeliver(t *testing.T) {
	db := testutil.NewDB(t)
	recorder := &testutil.Recorder{}
	svc := parcelService.NewParcelService(db, recorder)
	ctx := context.Background()

	db.Create(&riderModel.Rider{Name: "R", Email: "rider@x.com", Status: riderModel.StatusApproved})
	db.Create(&riderModel.Rider{Name: "P", Email: "pending@x.com", Status: riderModel.StatusPending})

	unpaid := createParcel(t, svc, "a@x.com", "pending", time.Now())
	if _, err := svc.AssignRider(ctx, unpaid, parcelTypes.AssignRiderRequest{RiderEmail: "rider@x.com"}); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("assign unpaid error = %v, want Conflict", err)
	}

	id := paidParcel(t, db, svc)
	if _, err := svc.AssignRider(ctx, id, parcelTypes.AssignRiderRequest{RiderEmail: "pending@x.com"}); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("assign pending rider error = %v, want NotFound", err)
	}

	p, err := svc.AssignRider(ctx, id, parcelTypes.AssignRiderRequest{RiderEmail: "rider@x.com", Location: "Warehouse"})
	if err != nil {
		t.Fatalf("AssignRider() error = %v", err)
	}
	if p.DeliveryStatus != parcelModel.DeliveryStatusRiderAssigned || p.AssignedRiderEmail != "rider@x.com" {
		t.Fatalf("parcel after assign = %+v", p)
	}

	if _, err := svc.UpdateDeliveryStatus(ctx, id, parcelTypes.DeliveryStatusRequest{Status: "in_transit"}, "someone@x.com", false); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("stranger update error = %v, want Forbidden", err)
	}
	if _, err := svc.UpdateDeliveryStatus(ctx, id, parcelTypes.DeliveryStatusRequest{Status: "lost"}, "rider@x.com", false); !errors.Is(err, apperror.ErrInvalidArgument) {
		t.Fatalf("bad status error = %v, want InvalidArgument", err)
	}
	if _, err := svc.UpdateDeliveryStatus(ctx, id, parcelTypes.DeliveryStatusRequest{Status: "in_transit", Location: "Road"}, "rider@x.com", false); err != nil {
		t.Fatalf("in_transit error = %v", err)
	}
	p, err = svc.UpdateDeliveryStatus(ctx, id, parcelTypes.DeliveryStatusRequest{Status: "delivered"}, "admin@x.com", true)
	if err != nil {
		t.Fatalf("delivered error = %v", err)
	}
	if p.DeliveryStatus != parcelModel.DeliveryStatusDelivered {
		t.Errorf("delivery status = %q", p.DeliveryStatus)
	}
	if _, err := svc.UpdateDeliveryStatus(ctx, id, parcelTypes.DeliveryStatusRequest{Status: "in_transit"}, "rider@x.com", false); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("update after delivery error = %v, want Conflict", err)
	}

	var history []trackingModel.Event
	db.Where("parcel_id = ?", id).Order("timestamp ASC").Find(&history)
	if len(history) != 3 {
		t.Fatalf("tracking events = %d, want 3", len(history))
	}
	if history[0].Location != "Warehouse" || history[1].Location != "Road" || history[2].Location != trackingModel.DefaultLocation {
		t.Errorf("locations = %q %q %q", history[0].Location, history[1].Location, history[2].Location)
	}

	keys := recorder.Keys()
	if len(keys) != 3 || keys[0] != constants.EventParcelStatusChanged {
		t.Errorf("published = %v", keys)
	}
}
