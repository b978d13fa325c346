package reading_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/aguacoop/aguacoop/internal/apperr"
	"github.com/aguacoop/aguacoop/internal/reading"
	"github.com/aguacoop/aguacoop/internal/tariff"
	"github.com/aguacoop/aguacoop/internal/voucher"
)

var fixedNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	repo       *reading.MockRepository
	rtx        *reading.MockRegistrationTx
	categories *reading.MockCategories
	svc        *reading.Service

	meter   *reading.Meter
	reading *reading.Reading
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		repo:       reading.NewMockRepository(ctrl),
		rtx:        reading.NewMockRegistrationTx(ctrl),
		categories: reading.NewMockCategories(ctrl),
	}

	f.svc = reading.NewService(f.repo, f.categories, reading.WithClock(func() time.Time { return fixedNow }))

	f.meter = &reading.Meter{
		ID:         uuid.New(),
		MemberName: "Rosa Quispe",
		CategoryID: uuid.New(),
		Status:     reading.MeterActive,
	}

	f.reading = &reading.Reading{
		ID:         uuid.New(),
		MeterID:    f.meter.ID,
		Period:     reading.PeriodOf(fixedNow),
		PriorValue: dec("100"),
		Status:     reading.StatusPending,
	}

	return f
}

func (f *fixture) params(current string) reading.RegisterParams {
	return reading.RegisterParams{
		ReadingID:    f.reading.ID,
		MeterID:      f.meter.ID,
		OperatorID:   uuid.New(),
		PriorValue:   dec("100"),
		CurrentValue: dec(current),
	}
}

// expectLookup sets up the reads that precede the registration transaction.
func (f *fixture) expectLookup() {
	f.repo.EXPECT().GetReading(gomock.Any(), f.reading.ID).Return(f.reading, nil)
	f.repo.EXPECT().GetMeter(gomock.Any(), f.meter.ID).Return(f.meter, nil)
	f.categories.EXPECT().Get(gomock.Any(), f.meter.CategoryID).Return(&tariff.Category{
		ID:             f.meter.CategoryID,
		Name:           "Domiciliaria",
		BasicAllowance: dec("10"),
		BaseRate:       dec("50"),
		ExcessRate:     dec("5"),
	}, nil)
	f.repo.EXPECT().BeginRegistration(gomock.Any()).Return(f.rtx, nil)
	f.rtx.EXPECT().Rollback().Return(nil)
}

func TestService_Register_CreatesVoucher(t *testing.T) {
	f := newFixture(t)
	f.expectLookup()

	p := f.params("114")

	f.rtx.EXPECT().VoucherForReading(gomock.Any(), f.reading.ID).Return(nil, nil)
	f.rtx.EXPECT().UpdateReading(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *reading.Reading) error {
			assert.Equal(t, reading.StatusRegistered, r.Status)
			assert.True(t, r.Consumption.Equal(dec("14")))
			assert.Equal(t, fixedNow, r.ReadAt)
			require.NotNil(t, r.OperatorID)
			assert.Equal(t, p.OperatorID, *r.OperatorID)

			return nil
		})
	f.rtx.EXPECT().CountPendingVouchers(gomock.Any(), f.meter.ID, uuid.Nil).Return(0, nil)
	f.rtx.EXPECT().CreateVoucher(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, v *voucher.Voucher) error {
			v.ID = uuid.New()
			return nil
		})
	f.rtx.EXPECT().Commit().Return(nil)

	got, err := f.svc.Register(context.Background(), p)
	require.NoError(t, err)

	assert.True(t, got.Created)
	assert.Equal(t, f.reading.ID, got.Voucher.ReadingID)
	assert.Equal(t, f.meter.ID, got.Voucher.MeterID)
	assert.Equal(t, voucher.StatusPending, got.Voucher.Status)
	assert.True(t, got.Voucher.BasicAmount.Equal(dec("50")))
	assert.True(t, got.Voucher.ExcessAmount.Equal(dec("20")))
	assert.True(t, got.Voucher.AccruedLateFee.IsZero())
	assert.True(t, got.Voucher.TotalDue.Equal(dec("70")))
	assert.Equal(t, fixedNow, got.Voucher.IssueDate)
	assert.Equal(t, time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC), got.Voucher.DueDate)
}

func TestService_Register_ChronicDebtSurcharge(t *testing.T) {
	f := newFixture(t)
	f.expectLookup()

	f.rtx.EXPECT().VoucherForReading(gomock.Any(), f.reading.ID).Return(nil, nil)
	f.rtx.EXPECT().UpdateReading(gomock.Any(), gomock.Any()).Return(nil)
	f.rtx.EXPECT().CountPendingVouchers(gomock.Any(), f.meter.ID, uuid.Nil).Return(4, nil)
	f.rtx.EXPECT().CreateVoucher(gomock.Any(), gomock.Any()).Return(nil)
	f.rtx.EXPECT().Commit().Return(nil)

	got, err := f.svc.Register(context.Background(), f.params("114"))
	require.NoError(t, err)

	assert.True(t, got.Voucher.AccruedLateFee.Equal(dec("2")))
	assert.True(t, got.Voucher.TotalDue.Equal(dec("72")))
}

func TestService_Register_UpdatesExistingVoucher(t *testing.T) {
	f := newFixture(t)
	f.expectLookup()

	existing := &voucher.Voucher{
		ID:        uuid.New(),
		ReadingID: f.reading.ID,
		MeterID:   f.meter.ID,
		TotalDue:  dec("70"),
		Status:    voucher.StatusOverdue,
		IssueDate: fixedNow.AddDate(0, -4, 0),
		DueDate:   fixedNow.AddDate(0, -1, 0),
	}

	f.rtx.EXPECT().VoucherForReading(gomock.Any(), f.reading.ID).Return(existing, nil)
	f.rtx.EXPECT().UpdateReading(gomock.Any(), gomock.Any()).Return(nil)
	f.rtx.EXPECT().CountPendingVouchers(gomock.Any(), f.meter.ID, existing.ID).Return(1, nil)
	f.rtx.EXPECT().UpdateVoucher(gomock.Any(), existing).Return(nil)
	f.rtx.EXPECT().Commit().Return(nil)

	got, err := f.svc.Register(context.Background(), f.params("105"))
	require.NoError(t, err)

	assert.False(t, got.Created)
	assert.Equal(t, existing.ID, got.Voucher.ID)
	assert.Equal(t, voucher.StatusPending, got.Voucher.Status)
	assert.True(t, got.Voucher.TotalDue.Equal(dec("50")))
	assert.Equal(t, fixedNow, got.Voucher.IssueDate)
	assert.Equal(t, voucher.DueDateFor(fixedNow), got.Voucher.DueDate)
}

// Re-registering with the same values must not count the reading's own voucher as
// prior debt, or a meter sitting at the surcharge threshold flips to a surcharge.
func TestService_Register_IdenticalReRegistrationKeepsTotal(t *testing.T) {
	f := newFixture(t)

	others := []*voucher.Voucher{
		{ID: uuid.New(), MeterID: f.meter.ID, Status: voucher.StatusPending},
		{ID: uuid.New(), MeterID: f.meter.ID, Status: voucher.StatusPending},
		{ID: uuid.New(), MeterID: f.meter.ID, Status: voucher.StatusPending},
		{ID: uuid.New(), MeterID: f.meter.ID, Status: voucher.StatusOverdue},
	}

	var own *voucher.Voucher

	f.repo.EXPECT().GetReading(gomock.Any(), f.reading.ID).Return(f.reading, nil).Times(2)
	f.repo.EXPECT().GetMeter(gomock.Any(), f.meter.ID).Return(f.meter, nil).Times(2)
	f.categories.EXPECT().Get(gomock.Any(), f.meter.CategoryID).Return(&tariff.Category{
		ID:             f.meter.CategoryID,
		BasicAllowance: dec("10"),
		BaseRate:       dec("50"),
		ExcessRate:     dec("5"),
	}, nil).Times(2)
	f.repo.EXPECT().BeginRegistration(gomock.Any()).Return(f.rtx, nil).Times(2)
	f.rtx.EXPECT().Rollback().Return(nil).Times(2)
	f.rtx.EXPECT().Commit().Return(nil).Times(2)
	f.rtx.EXPECT().UpdateReading(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	f.rtx.EXPECT().VoucherForReading(gomock.Any(), f.reading.ID).
		DoAndReturn(func(context.Context, uuid.UUID) (*voucher.Voucher, error) {
			return own, nil
		}).Times(2)
	f.rtx.EXPECT().CountPendingVouchers(gomock.Any(), f.meter.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, exclude uuid.UUID) (int, error) {
			all := others
			if own != nil {
				all = append([]*voucher.Voucher{own}, others...)
			}

			n := 0

			for _, v := range all {
				if v.Status == voucher.StatusPending && v.ID != exclude {
					n++
				}
			}

			return n, nil
		}).Times(2)
	f.rtx.EXPECT().CreateVoucher(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, v *voucher.Voucher) error {
			v.ID = uuid.New()
			own = v

			return nil
		}).Times(1)
	f.rtx.EXPECT().UpdateVoucher(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	p := f.params("114")

	first, err := f.svc.Register(context.Background(), p)
	require.NoError(t, err)

	firstTotal := first.Voucher.TotalDue

	second, err := f.svc.Register(context.Background(), p)
	require.NoError(t, err)

	assert.True(t, first.Created)
	assert.False(t, second.Created)
	assert.Equal(t, first.Voucher.ID, second.Voucher.ID)
	assert.True(t, firstTotal.Equal(dec("70")), "first total %s", firstTotal)
	assert.True(t, second.Voucher.TotalDue.Equal(firstTotal), "second total %s", second.Voucher.TotalDue)
	assert.True(t, second.Voucher.AccruedLateFee.IsZero())
}

func TestService_Register_PaidVoucherRejected(t *testing.T) {
	f := newFixture(t)
	f.expectLookup()

	f.rtx.EXPECT().VoucherForReading(gomock.Any(), f.reading.ID).Return(&voucher.Voucher{
		ID:     uuid.New(),
		Status: voucher.StatusPaid,
	}, nil)

	_, err := f.svc.Register(context.Background(), f.params("114"))
	assert.ErrorIs(t, err, reading.ErrVoucherPaid)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestService_Register_CommitFailure(t *testing.T) {
	f := newFixture(t)
	f.expectLookup()

	f.rtx.EXPECT().VoucherForReading(gomock.Any(), f.reading.ID).Return(nil, nil)
	f.rtx.EXPECT().UpdateReading(gomock.Any(), gomock.Any()).Return(nil)
	f.rtx.EXPECT().CountPendingVouchers(gomock.Any(), f.meter.ID, uuid.Nil).Return(0, nil)
	f.rtx.EXPECT().CreateVoucher(gomock.Any(), gomock.Any()).Return(nil)
	f.rtx.EXPECT().Commit().Return(errors.New("connection reset"))

	_, err := f.svc.Register(context.Background(), f.params("114"))
	assert.ErrorIs(t, err, apperr.ErrDependency)
}

func TestService_Register_InvalidParams(t *testing.T) {
	consumption := dec("3")

	tests := []struct {
		name     string
		mutate   func(p *reading.RegisterParams)
		wantKind error
	}{
		{
			name:     "NoOperator",
			mutate:   func(p *reading.RegisterParams) { p.OperatorID = uuid.Nil },
			wantKind: apperr.ErrUnauthorized,
		},
		{
			name:     "CurrentBelowPrior",
			mutate:   func(p *reading.RegisterParams) { p.CurrentValue = dec("99") },
			wantKind: apperr.ErrValidation,
		},
		{
			name:     "NegativePrior",
			mutate:   func(p *reading.RegisterParams) { p.PriorValue = dec("-1") },
			wantKind: apperr.ErrValidation,
		},
		{
			name:     "ConsumptionMismatch",
			mutate:   func(p *reading.RegisterParams) { p.Consumption = &consumption },
			wantKind: apperr.ErrValidation,
		},
		{
			name:     "MissingReading",
			mutate:   func(p *reading.RegisterParams) { p.ReadingID = uuid.Nil },
			wantKind: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			p := f.params("114")
			tt.mutate(&p)

			_, err := f.svc.Register(context.Background(), p)
			assert.ErrorIs(t, err, tt.wantKind)
		})
	}
}

func TestService_Register_ReadingOfOtherMeter(t *testing.T) {
	f := newFixture(t)

	other := *f.reading
	other.MeterID = uuid.New()

	f.repo.EXPECT().GetReading(gomock.Any(), f.reading.ID).Return(&other, nil)

	_, err := f.svc.Register(context.Background(), f.params("114"))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestService_Register_UnknownReading(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().GetReading(gomock.Any(), f.reading.ID).Return(nil, reading.ErrNotFound)

	_, err := f.svc.Register(context.Background(), f.params("114"))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_EnsureMonthly(t *testing.T) {
	f := newFixture(t)

	withHistory := uuid.New()
	fresh := uuid.New()
	last := dec("250.5")

	f.repo.EXPECT().ListRolloverCandidates(gomock.Any(), reading.PeriodOf(fixedNow)).Return([]reading.RolloverCandidate{
		{MeterID: withHistory, LastRegistered: &last},
		{MeterID: fresh},
	}, nil)
	f.repo.EXPECT().CreatePending(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rs []*reading.Reading) (int, error) {
			require.Len(t, rs, 2)

			assert.Equal(t, withHistory, rs[0].MeterID)
			assert.True(t, rs[0].PriorValue.Equal(last))
			assert.Equal(t, fresh, rs[1].MeterID)
			assert.True(t, rs[1].PriorValue.IsZero())

			for _, r := range rs {
				assert.Equal(t, reading.StatusPending, r.Status)
				assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), r.Period)
			}

			return len(rs), nil
		})

	created, err := f.svc.EnsureMonthly(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, created)
}

func TestService_EnsureMonthly_NothingToCreate(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().ListRolloverCandidates(gomock.Any(), gomock.Any()).Return(nil, nil)

	created, err := f.svc.EnsureMonthly(context.Background())
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestService_ListForEntry(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().ListRolloverCandidates(gomock.Any(), gomock.Any()).Return(nil, nil)
	f.repo.EXPECT().ListForEntry(gomock.Any(), reading.PeriodOf(fixedNow)).Return([]*reading.EntryRow{
		{Reading: f.reading, MemberName: f.meter.MemberName},
	}, nil)

	rows, err := f.svc.ListForEntry(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestService_Consumption_UnknownMeter(t *testing.T) {
	f := newFixture(t)

	id := uuid.New()
	f.repo.EXPECT().GetMeter(gomock.Any(), id).Return(nil, reading.ErrMeterNotFound)

	_, err := f.svc.Consumption(context.Background(), id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPeriodOf(t *testing.T) {
	got := reading.PeriodOf(time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), got)
}
