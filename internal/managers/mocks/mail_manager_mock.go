package mocks

import "github.com/stretchr/testify/mock"

type MockMailManager struct {
	mock.Mock
}

func (m *MockMailManager) SendWelcomeMail(email, nickname string) error {
	args := m.Called(email, nickname)
	return args.Error(0)
}

func (m *MockMailManager) SendVerificationApprovedMail(email, nickname string) error {
	args := m.Called(email, nickname)
	return args.Error(0)
}

func (m *MockMailManager) SendVerificationRejectedMail(email, nickname, reason string) error {
	args := m.Called(email, nickname, reason)
	return args.Error(0)
}
