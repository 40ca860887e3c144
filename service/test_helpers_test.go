package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
)

// testNow is the fixed instant used by service tests
var testNow = time.Date(2024, 4, 20, 12, 0, 0, 0, time.UTC)

// TestMocks holds all mock collaborators for easy access
type TestMocks struct {
	Factory         *MockUnitOfWorkFactory
	UoW             *MockUnitOfWork
	UserRepo        *MockUserRepository
	PledgeRepo      *MockPledgeRepository
	TransactionRepo *MockTransactionRepository
	EventPublisher  *MockEventPublisher
	Prices          *MockPriceProvider
	Codes           *MockCodeGenerator
}

// NewTestMocks creates a new set of mocks with the unit of work wired up
func NewTestMocks() *TestMocks {
	m := &TestMocks{
		Factory:         new(MockUnitOfWorkFactory),
		UoW:             new(MockUnitOfWork),
		UserRepo:        new(MockUserRepository),
		PledgeRepo:      new(MockPledgeRepository),
		TransactionRepo: new(MockTransactionRepository),
		EventPublisher:  new(MockEventPublisher),
		Prices:          new(MockPriceProvider),
		Codes:           new(MockCodeGenerator),
	}
	m.UoW.SetRepositories(m.UserRepo, m.PledgeRepo, m.TransactionRepo, m.EventPublisher)
	return m
}

// ExpectUnitOfWork sets up a unit of work that begins and is rolled back on exit
func (m *TestMocks) ExpectUnitOfWork() {
	m.Factory.On("Create").Return(m.UoW)
	m.UoW.On("Begin", mock.Anything).Return(nil)
	m.UoW.On("Rollback").Return(nil)
}

// ExpectCommit adds the expectation that the unit of work commits
func (m *TestMocks) ExpectCommit() {
	m.UoW.On("Commit").Return(nil)
}

// AssertAllExpectations asserts all mock expectations
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.Factory.AssertExpectations(t)
	m.UoW.AssertExpectations(t)
	m.UserRepo.AssertExpectations(t)
	m.PledgeRepo.AssertExpectations(t)
	m.TransactionRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
	m.Prices.AssertExpectations(t)
	m.Codes.AssertExpectations(t)
}
