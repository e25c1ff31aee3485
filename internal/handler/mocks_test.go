package handler

import (
	"context"

	"clinic-booking-be/internal/appointment"
	"clinic-booking-be/internal/chat"
	"clinic-booking-be/internal/payment"
	"clinic-booking-be/internal/session"
	"clinic-booking-be/internal/user"

	"github.com/stretchr/testify/mock"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, input user.RegisterInput) (string, *user.User, error) {
	args := m.Called(ctx, input)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*user.User), args.Error(2)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*user.User), args.Error(2)
}

func (m *MockUserService) Me(ctx context.Context, sess session.Session) (*user.User, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) GetDoctor(ctx context.Context, id int64) (*user.Doctor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.Doctor), args.Error(1)
}

func (m *MockUserService) ListDoctors(ctx context.Context, specialization string) ([]*user.Doctor, error) {
	args := m.Called(ctx, specialization)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.Doctor), args.Error(1)
}

type MockAppointmentService struct {
	mock.Mock
}

func (m *MockAppointmentService) result(args mock.Arguments) (*appointment.Appointment, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appointment.Appointment), args.Error(1)
}

func (m *MockAppointmentService) Create(ctx context.Context, sess session.Session, input appointment.CreateInput) (*appointment.Appointment, error) {
	return m.result(m.Called(ctx, sess, input))
}

func (m *MockAppointmentService) Get(ctx context.Context, sess session.Session, id string) (*appointment.Appointment, error) {
	return m.result(m.Called(ctx, sess, id))
}

func (m *MockAppointmentService) List(ctx context.Context, sess session.Session, filter appointment.ListFilter) ([]*appointment.Appointment, error) {
	args := m.Called(ctx, sess, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*appointment.Appointment), args.Error(1)
}

func (m *MockAppointmentService) Update(ctx context.Context, sess session.Session, id string, input appointment.UpdateInput) (*appointment.Appointment, error) {
	return m.result(m.Called(ctx, sess, id, input))
}

func (m *MockAppointmentService) Cancel(ctx context.Context, sess session.Session, id string) (*appointment.Appointment, error) {
	return m.result(m.Called(ctx, sess, id))
}

func (m *MockAppointmentService) Confirm(ctx context.Context, sess session.Session, id string) (*appointment.Appointment, error) {
	return m.result(m.Called(ctx, sess, id))
}

func (m *MockAppointmentService) Complete(ctx context.Context, sess session.Session, id string) (*appointment.Appointment, error) {
	return m.result(m.Called(ctx, sess, id))
}

func (m *MockAppointmentService) Availability(ctx context.Context, doctorID int64, date string) ([]string, error) {
	args := m.Called(ctx, doctorID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreatePayment(ctx context.Context, sess session.Session, input payment.CreateInput) (*payment.Payment, error) {
	args := m.Called(ctx, sess, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentService) CheckStatus(ctx context.Context, sess session.Session, paymentID string) (*payment.Payment, error) {
	args := m.Called(ctx, sess, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentService) ConfirmManually(ctx context.Context, sess session.Session, appointmentID string) (*appointment.Appointment, error) {
	args := m.Called(ctx, sess, appointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appointment.Appointment), args.Error(1)
}

func (m *MockPaymentService) ApplyGatewayStatus(ctx context.Context, gateway, reference string, status payment.GatewayStatus) (*payment.Payment, error) {
	args := m.Called(ctx, gateway, reference, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) Send(ctx context.Context, sess session.Session, input chat.SendInput) (*chat.Message, error) {
	args := m.Called(ctx, sess, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chat.Message), args.Error(1)
}

func (m *MockChatService) List(ctx context.Context, sess session.Session, appointmentID string, afterID int64) ([]*chat.Message, error) {
	args := m.Called(ctx, sess, appointmentID, afterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*chat.Message), args.Error(1)
}

func (m *MockChatService) Conversations(ctx context.Context, sess session.Session) ([]*chat.Conversation, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*chat.Conversation), args.Error(1)
}
