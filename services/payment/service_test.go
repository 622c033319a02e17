package payment_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"parcel-delivery/apperror"
	"parcel-delivery/constants"
	parcelModel "parcel-delivery/models/parcel"
	paymentModel "parcel-delivery/models/payment"
	paymentService "parcel-delivery/services/payment"
	"parcel-delivery/testutil"
	paymentTypes "parcel-delivery/types/payment"

	"gorm.io/gorm"
)

type fakeProcessor struct {
	CreateFunc func(ctx context.Context, amountInCents int64) (string, error)
	calls      int
}

func (f *fakeProcessor) CreateChargeIntent(ctx context.Context, amountInCents int64) (string, error) {
	f.calls++
	return f.CreateFunc(ctx, amountInCents)
}

func seedParcel(t *testing.T, db *gorm.DB, id, trackingID string) {
	t.Helper()
	p := parcelModel.Parcel{ID: id, Title: "box", CreatedBy: "a@x.com", TrackingID: trackingID}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create parcel: %v", err)
	}
}

func countPayments(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&paymentModel.Payment{}).Count(&n).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	return n
}

func TestCreateChargeIntent(t *testing.T) {
	processor := &fakeProcessor{CreateFunc: func(_ context.Context, amount int64) (string, error) {
		if amount != 2500 {
			t.Errorf("amount = %d, want 2500", amount)
		}
		return "pi_123_secret_abc", nil
	}}
	svc := paymentService.NewPaymentService(testutil.NewDB(t), processor, nil)

	res, err := svc.CreateChargeIntent(context.Background(), paymentTypes.ChargeIntentRequest{AmountInCents: 2500})
	if err != nil {
		t.Fatalf("CreateChargeIntent() error = %v", err)
	}
	if res.ClientSecret != "pi_123_secret_abc" {
		t.Errorf("ClientSecret = %q", res.ClientSecret)
	}
}

func TestCreateChargeIntentErrors(t *testing.T) {
	processor := &fakeProcessor{CreateFunc: func(context.Context, int64) (string, error) {
		return "", errors.New("Your card was declined.")
	}}
	svc := paymentService.NewPaymentService(testutil.NewDB(t), processor, nil)
	ctx := context.Background()

	for _, amount := range []int64{0, -100} {
		if _, err := svc.CreateChargeIntent(ctx, paymentTypes.ChargeIntentRequest{AmountInCents: amount}); !errors.Is(err, apperror.ErrInvalidArgument) {
			t.Errorf("amount %d: error = %v, want InvalidArgument", amount, err)
		}
	}
	if processor.calls != 0 {
		t.Fatalf("processor called %d times for invalid amounts", processor.calls)
	}

	_, err := svc.CreateChargeIntent(ctx, paymentTypes.ChargeIntentRequest{AmountInCents: 100})
	if !errors.Is(err, apperror.ErrPaymentProcessorError) {
		t.Fatalf("error = %v, want PaymentProcessorError", err)
	}
	if got := err.Error(); got != "payment processor error: Your card was declined." {
		t.Errorf("message = %q", got)
	}
}

func TestRecordPaymentScenario(t *testing.T) {
	db := testutil.NewDB(t)
	recorder := &testutil.Recorder{}
	svc := paymentService.NewPaymentService(db, nil, recorder)
	ctx := context.Background()

	seedParcel(t, db, "P1", "TRK-P1")
	req := paymentTypes.RecordRequest{ParcelID: "P1", TransactionID: "T1", Email: "a@x.com", Amount: 25}

	res, err := svc.RecordPayment(ctx, req)
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}
	if res.PaymentID == "" {
		t.Fatal("empty payment id")
	}

	var p parcelModel.Parcel
	if err := db.First(&p, "id = ?", "P1").Error; err != nil {
		t.Fatalf("load parcel: %v", err)
	}
	if p.Status != parcelModel.StatusPaid || p.PaymentStatus != parcelModel.PaymentStatusPaid || p.TransactionID != "T1" {
		t.Errorf("parcel = %+v, want Paid with transaction T1", p)
	}

	var stored paymentModel.Payment
	if err := db.First(&stored, "id = ?", res.PaymentID).Error; err != nil {
		t.Fatalf("load payment: %v", err)
	}
	if stored.ParcelID != "P1" || stored.TrackingID != "TRK-P1" || stored.Amount != 25 {
		t.Errorf("payment = %+v", stored)
	}

	// Same call again: conflict and nothing new stored.
	if _, err := svc.RecordPayment(ctx, req); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("repeat RecordPayment() error = %v, want Conflict", err)
	}
	if n := countPayments(t, db); n != 1 {
		t.Errorf("payments = %d, want 1", n)
	}

	if keys := recorder.Keys(); len(keys) != 1 || keys[0] != constants.EventParcelPaid {
		t.Errorf("published %v", keys)
	}
}

func TestRecordPaymentTrackingIDIsSnapshot(t *testing.T) {
	db := testutil.NewDB(t)
	svc := paymentService.NewPaymentService(db, nil, nil)

	seedParcel(t, db, "P1", "TRK-OLD")
	res, err := svc.RecordPayment(context.Background(), paymentTypes.RecordRequest{ParcelID: "P1", TransactionID: "T1", Email: "a@x.com", Amount: 10})
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}
	db.Model(&parcelModel.Parcel{}).Where("id = ?", "P1").Update("tracking_id", "TRK-NEW")

	var stored paymentModel.Payment
	db.First(&stored, "id = ?", res.PaymentID)
	if stored.TrackingID != "TRK-OLD" {
		t.Errorf("tracking id = %q, want snapshot TRK-OLD", stored.TrackingID)
	}
}

func TestRecordPaymentRejections(t *testing.T) {
	db := testutil.NewDB(t)
	svc := paymentService.NewPaymentService(db, nil, nil)
	ctx := context.Background()
	seedParcel(t, db, "P1", "TRK-P1")

	tests := []struct {
		name string
		req  paymentTypes.RecordRequest
		want error
	}{
		{"missing parcel id", paymentTypes.RecordRequest{TransactionID: "T1", Email: "a@x.com", Amount: 1}, apperror.ErrInvalidArgument},
		{"missing transaction", paymentTypes.RecordRequest{ParcelID: "P1", Email: "a@x.com", Amount: 1}, apperror.ErrInvalidArgument},
		{"missing email", paymentTypes.RecordRequest{ParcelID: "P1", TransactionID: "T1", Amount: 1}, apperror.ErrInvalidArgument},
		{"missing amount", paymentTypes.RecordRequest{ParcelID: "P1", TransactionID: "T1", Email: "a@x.com"}, apperror.ErrInvalidArgument},
		{"unknown parcel", paymentTypes.RecordRequest{ParcelID: "nope", TransactionID: "T1", Email: "a@x.com", Amount: 1}, apperror.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.RecordPayment(ctx, tt.req); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	if n := countPayments(t, db); n != 0 {
		t.Errorf("payments = %d, want 0", n)
	}
	var p parcelModel.Parcel
	db.First(&p, "id = ?", "P1")
	if p.PaymentStatus != parcelModel.PaymentStatusUnpaid {
		t.Errorf("payment status = %q, want unpaid", p.PaymentStatus)
	}
}

func TestRecordPaymentNonPositiveAmountMessage(t *testing.T) {
	db := testutil.NewDB(t)
	svc := paymentService.NewPaymentService(db, nil, nil)
	seedParcel(t, db, "P1", "TRK-P1")

	for _, amount := range []float64{0, -5} {
		_, err := svc.RecordPayment(context.Background(), paymentTypes.RecordRequest{ParcelID: "P1", TransactionID: "T1", Email: "a@x.com", Amount: amount})
		if !errors.Is(err, apperror.ErrInvalidArgument) || !strings.Contains(err.Error(), "amount must be greater than zero") {
			t.Errorf("amount %v: error = %v", amount, err)
		}
	}
}

func TestRecordPaymentRollsBackWhenInsertFails(t *testing.T) {
	db := testutil.NewDB(t)
	svc := paymentService.NewPaymentService(db, nil, nil)
	seedParcel(t, db, "P1", "TRK-P1")

	if err := db.Migrator().DropTable(&paymentModel.Payment{}); err != nil {
		t.Fatalf("drop payments: %v", err)
	}

	_, err := svc.RecordPayment(context.Background(), paymentTypes.RecordRequest{ParcelID: "P1", TransactionID: "T1", Email: "a@x.com", Amount: 5})
	if !errors.Is(err, apperror.ErrStoreError) {
		t.Fatalf("error = %v, want StoreError", err)
	}

	var p parcelModel.Parcel
	db.First(&p, "id = ?", "P1")
	if p.PaymentStatus == parcelModel.PaymentStatusPaid {
		t.Error("parcel stayed Paid after the payment insert failed")
	}
}

func TestListPaymentsSelfOnly(t *testing.T) {
	db := testutil.NewDB(t)
	svc := paymentService.NewPaymentService(db, nil, nil)
	ctx := context.Background()

	older := paymentModel.Payment{ParcelID: "P1", TransactionID: "T1", Email: "a@x.com", Amount: 5, PaidAt: time.Now().Add(-time.Hour)}
	newer := paymentModel.Payment{ParcelID: "P2", TransactionID: "T2", Email: "a@x.com", Amount: 7, PaidAt: time.Now()}
	other := paymentModel.Payment{ParcelID: "P3", TransactionID: "T3", Email: "b@x.com", Amount: 9, PaidAt: time.Now()}
	for _, p := range []*paymentModel.Payment{&older, &newer, &other} {
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("create payment: %v", err)
		}
	}

	if _, err := svc.ListPayments(ctx, "b@x.com", "a@x.com"); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("cross-user error = %v, want Forbidden", err)
	}
	if _, err := svc.ListPayments(ctx, "", ""); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("anonymous error = %v, want Forbidden", err)
	}

	payments, err := svc.ListPayments(ctx, "a@x.com", "a@x.com")
	if err != nil {
		t.Fatalf("ListPayments() error = %v", err)
	}
	if len(payments) != 2 || payments[0].ID != newer.ID || payments[1].ID != older.ID {
		t.Errorf("payments = %+v", payments)
	}
}
