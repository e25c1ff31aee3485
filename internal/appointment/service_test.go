package appointment

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"clinic-booking-be/internal/apperror"
	"clinic-booking-be/internal/session"
	"clinic-booking-be/internal/user"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var clinicTZ = time.FixedZone("ICT", 7*3600)

// 20/12/2025 10:00 at the clinic.
var fixedNow = time.Date(2025, 12, 20, 10, 0, 0, 0, clinicTZ)

type fakeDirectory struct {
	users map[int64]*user.User
}

func newFakeDirectory() *fakeDirectory {
	specialty := "Tim mạch"
	fee := int64(300000)
	return &fakeDirectory{users: map[int64]*user.User{
		1:  {ID: 1, FullName: "Nguyen Van An", Role: session.RolePatient},
		2:  {ID: 2, FullName: "Le Thi Cuc", Role: session.RolePatient},
		10: {ID: 10, FullName: "BS. Tran Thi Binh", Role: session.RoleDoctor, Specialization: &specialty, ConsultationFee: &fee},
		11: {ID: 11, FullName: "BS. Pham Duc", Role: session.RoleDoctor},
		99: {ID: 99, FullName: "Admin", Role: session.RoleAdmin},
	}}
}

func (d *fakeDirectory) GetUser(_ context.Context, id int64) (*user.User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (d *fakeDirectory) GetDoctor(_ context.Context, id int64) (*user.Doctor, error) {
	u, ok := d.users[id]
	if !ok || u.Role != session.RoleDoctor {
		return nil, user.ErrDoctorNotFound
	}
	return u.AsDoctor(500000), nil
}

// memRepo mirrors the SQL repository, including the partial unique index and
// compare-and-set updates.
type memRepo struct {
	mu    sync.Mutex
	items map[string]*Appointment
}

func newMemRepo() *memRepo {
	return &memRepo{items: make(map[string]*Appointment)}
}

func (r *memRepo) Create(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.items {
		if ex.Status != StatusCancelled && ex.SlotKey() == a.SlotKey() {
			return &pq.Error{Code: "23505", Constraint: slotConstraint}
		}
	}
	a.CreatedAt, a.UpdatedAt = fixedNow, fixedNow
	cp := *a
	r.items[a.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (r *memRepo) List(_ context.Context, f ListFilter) ([]*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Appointment
	for _, a := range r.items {
		if (f.PatientID == 0 || a.PatientID == f.PatientID) &&
			(f.DoctorID == 0 || a.DoctorID == f.DoctorID) &&
			(f.Status == "" || a.Status == f.Status) &&
			(!f.UpcomingOnly || a.Upcoming()) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRepo) SlotTaken(_ context.Context, doctorID int64, date time.Time, slot string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := SlotKey(doctorID, date, slot)
	for _, a := range r.items {
		if a.Status != StatusCancelled && a.SlotKey() == key {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) BookedSlots(_ context.Context, doctorID int64, date time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, a := range r.items {
		if a.DoctorID == doctorID && a.Date.Equal(date) && a.Status != StatusCancelled {
			out = append(out, a.Time)
		}
	}
	return out, nil
}

func (r *memRepo) UpdateStatus(_ context.Context, id string, from, to Status) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok || a.Status != from {
		return nil, sql.ErrNoRows
	}
	a.Status = to
	cp := *a
	return &cp, nil
}

func (r *memRepo) Reschedule(_ context.Context, id string, date time.Time, slot, notes string) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok || a.Status != StatusPending {
		return nil, sql.ErrNoRows
	}
	key := SlotKey(a.DoctorID, date, slot)
	for _, ex := range r.items {
		if ex.ID != id && ex.Status != StatusCancelled && ex.SlotKey() == key {
			return nil, &pq.Error{Code: "23505", Constraint: slotConstraint}
		}
	}
	a.Date, a.Time, a.Notes = date, slot, notes
	cp := *a
	return &cp, nil
}

func (r *memRepo) Cancel(ctx context.Context, id string) (*Appointment, error) {
	return r.UpdateStatus(ctx, id, StatusPending, StatusCancelled)
}

func (r *memRepo) MarkPaid(_ context.Context, id string) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok || a.Status == StatusCancelled {
		return nil, sql.ErrNoRows
	}
	a.PaymentStatus = PaymentPaid
	cp := *a
	return &cp, nil
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, a *Appointment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Appointment), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, f ListFilter) ([]*Appointment, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Appointment), args.Error(1)
}

func (m *MockRepository) SlotTaken(ctx context.Context, doctorID int64, date time.Time, slot string) (bool, error) {
	args := m.Called(ctx, doctorID, date, slot)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) BookedSlots(ctx context.Context, doctorID int64, date time.Time) ([]string, error) {
	args := m.Called(ctx, doctorID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id string, from, to Status) (*Appointment, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Appointment), args.Error(1)
}

func (m *MockRepository) Reschedule(ctx context.Context, id string, date time.Time, slot, notes string) (*Appointment, error) {
	args := m.Called(ctx, id, date, slot, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Appointment), args.Error(1)
}

func (m *MockRepository) Cancel(ctx context.Context, id string) (*Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Appointment), args.Error(1)
}

func (m *MockRepository) MarkPaid(ctx context.Context, id string) (*Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Appointment), args.Error(1)
}

func newTestService(repo Repository) *service {
	svc := NewService(repo, newFakeDirectory(), NewLocalLocker(), clinicTZ).(*service)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func book(doctorID int64, date, slot string) CreateInput {
	return CreateInput{DoctorID: doctorID, Date: date, Time: slot}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc := newTestService(newMemRepo())

		a, err := svc.Create(ctx, patientSess, CreateInput{DoctorID: 10, Date: "25/12/2025", Time: "09:00", Notes: "  đau ngực  "})
		require.NoError(t, err)
		assert.Equal(t, StatusPending, a.Status)
		assert.Equal(t, PaymentUnpaid, a.PaymentStatus)
		assert.Equal(t, int64(300000), a.Amount)
		assert.Equal(t, "Nguyen Van An", a.PatientName)
		assert.Equal(t, "BS. Tran Thi Binh", a.DoctorName)
		assert.Equal(t, "Tim mạch", a.Specialization)
		assert.Equal(t, "đau ngực", a.Notes)
		assert.Equal(t, "25/12/2025", FormatDate(a.Date))
	})

	t.Run("DefaultFee", func(t *testing.T) {
		svc := newTestService(newMemRepo())

		a, err := svc.Create(ctx, patientSess, book(11, "25/12/2025", "09:00"))
		require.NoError(t, err)
		assert.Equal(t, int64(500000), a.Amount)
		assert.Equal(t, "General", a.Specialization)
	})

	t.Run("AdminOnBehalf", func(t *testing.T) {
		svc := newTestService(newMemRepo())

		in := book(10, "25/12/2025", "10:00")
		_, err := svc.Create(ctx, adminSess, in)
		assert.ErrorIs(t, err, ErrPatientRequired)

		in.PatientID = 11
		_, err = svc.Create(ctx, adminSess, in)
		assert.ErrorIs(t, err, ErrInvalidPatient)

		in.PatientID = 404
		_, err = svc.Create(ctx, adminSess, in)
		assert.ErrorIs(t, err, ErrInvalidPatient)

		in.PatientID = 2
		a, err := svc.Create(ctx, adminSess, in)
		require.NoError(t, err)
		assert.Equal(t, int64(2), a.PatientID)
	})

	t.Run("PatientIDIgnoredForPatients", func(t *testing.T) {
		svc := newTestService(newMemRepo())

		in := book(10, "25/12/2025", "10:00")
		in.PatientID = 2
		a, err := svc.Create(ctx, patientSess, in)
		require.NoError(t, err)
		assert.Equal(t, patientSess.UserID, a.PatientID)
	})

	t.Run("Rejected", func(t *testing.T) {
		svc := newTestService(newMemRepo())

		cases := []struct {
			name string
			sess session.Session
			in   CreateInput
			want error
		}{
			{"anonymous", session.Session{}, book(10, "25/12/2025", "09:00"), session.ErrUnauthenticated},
			{"doctor books", doctorSess, book(10, "25/12/2025", "09:00"), ErrRoleNotAllowed},
			{"lunch slot", patientSess, book(10, "25/12/2025", "12:00"), ErrInvalidSlot},
			{"iso date", patientSess, book(10, "2025-12-25", "09:00"), ErrInvalidDate},
			{"yesterday", patientSess, book(10, "19/12/2025", "16:00"), ErrPastSlot},
			{"earlier today", patientSess, book(10, "20/12/2025", "09:30"), ErrPastSlot},
			{"right now", patientSess, book(10, "20/12/2025", "10:00"), ErrPastSlot},
			{"unknown doctor", patientSess, book(404, "25/12/2025", "09:00"), user.ErrDoctorNotFound},
			{"patient as doctor", patientSess, book(2, "25/12/2025", "09:00"), user.ErrDoctorNotFound},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Create(ctx, tc.sess, tc.in)
				assert.ErrorIs(t, err, tc.want)
			})
		}
	})

	t.Run("NotesTooLong", func(t *testing.T) {
		svc := newTestService(newMemRepo())

		in := book(10, "25/12/2025", "09:00")
		in.Notes = strings.Repeat("ă", 1001)
		_, err := svc.Create(ctx, patientSess, in)
		assert.ErrorIs(t, err, ErrNotesTooLong)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))

		in.Notes = strings.Repeat("ă", 1000)
		_, err = svc.Create(ctx, patientSess, in)
		assert.NoError(t, err)
	})

	t.Run("SlotTaken", func(t *testing.T) {
		svc := newTestService(newMemRepo())

		_, err := svc.Create(ctx, patientSess, book(10, "25/12/2025", "09:00"))
		require.NoError(t, err)

		_, err = svc.Create(ctx, otherSess, book(10, "25/12/2025", "09:00"))
		assert.ErrorIs(t, err, ErrSlotTaken)
		assert.True(t, apperror.IsKind(err, apperror.KindConflict))

		_, err = svc.Create(ctx, otherSess, book(11, "25/12/2025", "09:00"))
		assert.NoError(t, err, "another doctor's slot is independent")
	})

	t.Run("UniqueViolationFromDB", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)

		repo.On("SlotTaken", ctx, int64(10), mock.Anything, "09:00").Return(false, nil)
		repo.On("Create", ctx, mock.Anything).
			Return(&pq.Error{Code: "23505", Constraint: "appointments_doctor_slot_key"})

		_, err := svc.Create(ctx, patientSess, book(10, "25/12/2025", "09:00"))
		assert.ErrorIs(t, err, ErrSlotTaken)
		repo.AssertExpectations(t)
	})
}

func TestService_Create_ConcurrentDoubleBooking(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo())

	sessions := []session.Session{patientSess, otherSess}
	errs := make([]error, len(sessions))

	var wg sync.WaitGroup
	for i, sess := range sessions {
		wg.Add(1)
		go func(i int, sess session.Session) {
			defer wg.Done()
			_, errs[i] = svc.Create(ctx, sess, book(10, "25/12/2025", "14:30"))
		}(i, sess)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperror.IsKind(err, apperror.KindConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)
}

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo())

	a, err := svc.Create(ctx, patientSess, book(10, "25/12/2025", "09:00"))
	require.NoError(t, err)

	t.Run("NonOwnerCannotCancel", func(t *testing.T) {
		_, err := svc.Cancel(ctx, otherSess, a.ID)
		assert.True(t, apperror.IsKind(err, apperror.KindUnauthorized))
	})

	t.Run("OtherDoctorCannotConfirm", func(t *testing.T) {
		_, err := svc.Confirm(ctx, strangerDoc, a.ID)
		assert.ErrorIs(t, err, ErrNotParticipant)
	})

	t.Run("CompleteBeforeConfirm", func(t *testing.T) {
		_, err := svc.Complete(ctx, doctorSess, a.ID)
		assert.ErrorIs(t, err, ErrNotConfirmed)
	})

	confirmed, err := svc.Confirm(ctx, doctorSess, a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)

	t.Run("CancelAfterConfirm", func(t *testing.T) {
		_, err := svc.Cancel(ctx, patientSess, a.ID)
		assert.ErrorIs(t, err, ErrNotPending)
		assert.True(t, apperror.IsKind(err, apperror.KindState))
	})

	completed, err := svc.Complete(ctx, doctorSess, a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, completed.Status)

	_, err = svc.Complete(ctx, doctorSess, a.ID)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestService_CancelTwice(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo())

	a, err := svc.Create(ctx, patientSess, book(10, "25/12/2025", "09:00"))
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, patientSess, a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	_, err = svc.Cancel(ctx, patientSess, a.ID)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
	assert.True(t, apperror.IsKind(err, apperror.KindState))

	_, err = svc.Confirm(ctx, doctorSess, a.ID)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)

	again, err := svc.Create(ctx, otherSess, book(10, "25/12/2025", "09:00"))
	require.NoError(t, err, "cancelled slot can be rebooked")
	assert.NotEqual(t, a.ID, again.ID)
}

func TestService_AdminCancelsPending(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo())

	a, err := svc.Create(ctx, patientSess, book(10, "25/12/2025", "11:30"))
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, adminSess, a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
}

func TestService_ConcurrentUpdate(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := newTestService(repo)

	pending := appt(StatusPending, PaymentUnpaid)
	pending.ID = testID

	repo.On("GetByID", ctx, testID).Return(pending, nil)
	repo.On("UpdateStatus", ctx, testID, StatusPending, StatusConfirmed).Return(nil, sql.ErrNoRows)

	_, err := svc.Confirm(ctx, doctorSess, testID)
	assert.ErrorIs(t, err, ErrConcurrentUpdate)
	repo.AssertExpectations(t)
}

func strPtr(s string) *string { return &s }

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("MoveSlot", func(t *testing.T) {
		svc := newTestService(newMemRepo())
		a, err := svc.Create(ctx, patientSess, CreateInput{DoctorID: 10, Date: "25/12/2025", Time: "09:00", Notes: "ho"})
		require.NoError(t, err)

		moved, err := svc.Update(ctx, patientSess, a.ID, UpdateInput{Date: strPtr("26/12/2025"), Time: strPtr("15:00")})
		require.NoError(t, err)
		assert.Equal(t, "26/12/2025", FormatDate(moved.Date))
		assert.Equal(t, "15:00", moved.Time)
		assert.Equal(t, "ho", moved.Notes)
		assert.Equal(t, StatusPending, moved.Status)

		_, err = svc.Create(ctx, otherSess, book(10, "25/12/2025", "09:00"))
		assert.NoError(t, err, "old slot is free again")
	})

	t.Run("TimeOnlyKeepsDate", func(t *testing.T) {
		svc := newTestService(newMemRepo())
		a, err := svc.Create(ctx, patientSess, book(10, "25/12/2025", "09:00"))
		require.NoError(t, err)

		moved, err := svc.Update(ctx, adminSess, a.ID, UpdateInput{Time: strPtr("10:30")})
		require.NoError(t, err)
		assert.Equal(t, "25/12/2025", FormatDate(moved.Date))
		assert.Equal(t, "10:30", moved.Time)
	})

	t.Run("NotesOnly", func(t *testing.T) {
		repo := newMemRepo()
		svc := newTestService(repo)
		a, err := svc.Create(ctx, patientSess, book(10, "25/12/2025", "09:00"))
		require.NoError(t, err)

		got, err := svc.Update(ctx, patientSess, a.ID, UpdateInput{Notes: strPtr("  sốt nhẹ ")})
		require.NoError(t, err)
		assert.Equal(t, "sốt nhẹ", got.Notes)
		assert.Equal(t, a.SlotKey(), got.SlotKey())

		_, err = svc.Update(ctx, patientSess, a.ID, UpdateInput{Notes: strPtr(strings.Repeat("ă", 1001))})
		assert.ErrorIs(t, err, ErrNotesTooLong)
	})

	t.Run("SlotTaken", func(t *testing.T) {
		svc := newTestService(newMemRepo())
		_, err := svc.Create(ctx, otherSess, book(10, "25/12/2025", "10:00"))
		require.NoError(t, err)
		a, err := svc.Create(ctx, patientSess, book(10, "25/12/2025", "09:00"))
		require.NoError(t, err)

		_, err = svc.Update(ctx, patientSess, a.ID, UpdateInput{Time: strPtr("10:00")})
		assert.ErrorIs(t, err, ErrSlotTaken)
		assert.True(t, apperror.IsKind(err, apperror.KindConflict))
	})

	t.Run("Rejected", func(t *testing.T) {
		svc := newTestService(newMemRepo())
		a, err := svc.Create(ctx, patientSess, book(10, "25/12/2025", "09:00"))
		require.NoError(t, err)

		cases := []struct {
			name string
			sess session.Session
			in   UpdateInput
			want error
		}{
			{"anonymous", session.Session{}, UpdateInput{Time: strPtr("10:00")}, session.ErrUnauthenticated},
			{"empty", patientSess, UpdateInput{}, ErrNothingToUpdate},
			{"other patient", otherSess, UpdateInput{Time: strPtr("10:00")}, ErrNotParticipant},
			{"doctor", doctorSess, UpdateInput{Time: strPtr("10:00")}, ErrRoleNotAllowed},
			{"lunch slot", patientSess, UpdateInput{Time: strPtr("12:00")}, ErrInvalidSlot},
			{"iso date", patientSess, UpdateInput{Date: strPtr("2025-12-26")}, ErrInvalidDate},
			{"past", patientSess, UpdateInput{Date: strPtr("19/12/2025")}, ErrPastSlot},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Update(ctx, tc.sess, a.ID, tc.in)
				assert.ErrorIs(t, err, tc.want)
			})
		}
	})

	t.Run("ConfirmedIsFrozen", func(t *testing.T) {
		svc := newTestService(newMemRepo())
		a, err := svc.Create(ctx, patientSess, book(10, "25/12/2025", "09:00"))
		require.NoError(t, err)
		_, err = svc.Confirm(ctx, doctorSess, a.ID)
		require.NoError(t, err)

		_, err = svc.Update(ctx, patientSess, a.ID, UpdateInput{Notes: strPtr("x")})
		assert.ErrorIs(t, err, ErrNotPending)
	})

	t.Run("ConfirmedMeanwhile", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)

		pending := appt(StatusPending, PaymentUnpaid)
		pending.ID = testID

		repo.On("GetByID", ctx, testID).Return(pending, nil)
		repo.On("Reschedule", ctx, testID, pending.Date, pending.Time, "x").Return(nil, sql.ErrNoRows)

		_, err := svc.Update(ctx, patientSess, testID, UpdateInput{Notes: strPtr("x")})
		assert.ErrorIs(t, err, ErrConcurrentUpdate)
		repo.AssertExpectations(t)
	})
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo())

	a, err := svc.Create(ctx, patientSess, book(10, "25/12/2025", "09:00"))
	require.NoError(t, err)

	for _, sess := range []session.Session{patientSess, doctorSess, adminSess} {
		got, err := svc.Get(ctx, sess, a.ID)
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)
	}

	_, err = svc.Get(ctx, otherSess, a.ID)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	_, err = svc.Get(ctx, patientSess, "not-a-uuid")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	_, err = svc.Get(ctx, patientSess, testID)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	_, err = svc.Get(ctx, session.Session{}, a.ID)
	assert.ErrorIs(t, err, session.ErrUnauthenticated)
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo())

	for i, slot := range []string{"08:00", "08:30", "09:00"} {
		sess := patientSess
		if i == 2 {
			sess = otherSess
		}
		_, err := svc.Create(ctx, sess, book(10, "25/12/2025", slot))
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, otherSess, book(11, "25/12/2025", "08:00"))
	require.NoError(t, err)

	mine, err := svc.List(ctx, patientSess, ListFilter{PatientID: 2, DoctorID: 11})
	require.NoError(t, err)
	assert.Len(t, mine, 2, "patients only see their own appointments")

	docs, err := svc.List(ctx, doctorSess, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	all, err := svc.List(ctx, adminSess, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = svc.List(ctx, adminSess, ListFilter{Status: "archived"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestService_Availability(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo())

	_, err := svc.Create(ctx, patientSess, book(10, "20/12/2025", "14:00"))
	require.NoError(t, err)

	free, err := svc.Availability(ctx, 10, "20/12/2025")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"10:30", "11:00", "11:30",
		"13:30", "14:30", "15:00", "15:30", "16:00", "16:30", "17:00",
	}, free)

	free, err = svc.Availability(ctx, 10, "21/12/2025")
	require.NoError(t, err)
	assert.Equal(t, Slots, free)

	_, err = svc.Availability(ctx, 404, "21/12/2025")
	assert.ErrorIs(t, err, user.ErrDoctorNotFound)

	_, err = svc.Availability(ctx, 10, "21-12-2025")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func ExampleSlotKey() {
	d, _ := ParseDate("25/12/2025")
	fmt.Println(SlotKey(10, d, "09:00"))
	// Output: slot:10:2025-12-25:09:00
}
