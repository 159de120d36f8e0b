package taskrepo_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres/pgtest"
	"fulfillment/internal/adapters/out/postgres/taskrepo"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/task"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

type TaskRepositoryIntegrationTestSuite struct {
	suite.Suite
	pg         *pgtest.Database
	repository *taskrepo.GormTaskRepository
}

func (suite *TaskRepositoryIntegrationTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.pg = pg
}

func (suite *TaskRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.pg.Truncate())

	tracker := new(MockAggregateTracker)
	tracker.On("TrackAggregate", mock.Anything, mock.Anything).Maybe()
	suite.repository = taskrepo.NewGormTaskRepository(suite.pg.DB, tracker)
}

func (suite *TaskRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.pg != nil {
		suite.Require().NoError(suite.pg.Terminate(context.Background()))
	}
}

func (suite *TaskRepositoryIntegrationTestSuite) newTask(orderID kernel.UUID) *task.DriverTask {
	r, err := kernel.NewRecipient("Budi", "+62812", "Jl. Sudirman 5")
	suite.Require().NoError(err)
	dt, err := task.NewDriverTask(kernel.NewUUID(), orderID, kernel.NewUUID(), r, nil, time.Now().UTC())
	suite.Require().NoError(err)
	return dt
}

func (suite *TaskRepositoryIntegrationTestSuite) deliver(dt *task.DriverTask) {
	pod, err := task.NewProofOfDelivery("pod/1.jpg", "sig/1.png", "front door")
	suite.Require().NoError(err)
	_, err = dt.Complete(pod, time.Now().UTC())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Update(suite.T().Context(), dt))
}

func (suite *TaskRepositoryIntegrationTestSuite) TestAddGetUpdate() {
	ctx := suite.T().Context()
	dt := suite.newTask(kernel.NewUUID())
	suite.Require().NoError(suite.repository.Add(ctx, dt))

	suite.Require().NoError(dt.Advance(task.PickedUp))
	suite.Require().NoError(suite.repository.Update(ctx, dt))
	suite.deliver(dt)

	loaded, err := suite.repository.Get(ctx, dt.ID())
	suite.Require().NoError(err)
	suite.Equal(task.Delivered, loaded.Status())
	suite.Equal("Budi", loaded.Recipient().Name())
	suite.Require().NotNil(loaded.Proof())
	suite.Equal("pod/1.jpg", loaded.Proof().Photo())
	suite.Equal("front door", loaded.Proof().Notes())
	suite.NotNil(loaded.DeliveredAt())
}

func (suite *TaskRepositoryIntegrationTestSuite) TestGet_Missing_NotFound() {
	_, err := suite.repository.Get(suite.T().Context(), kernel.NewUUID())

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *TaskRepositoryIntegrationTestSuite) TestSingleActiveTaskPerOrder() {
	ctx := suite.T().Context()
	orderID := kernel.NewUUID()

	first := suite.newTask(orderID)
	suite.Require().NoError(suite.repository.Add(ctx, first))

	err := suite.repository.Add(ctx, suite.newTask(orderID))
	suite.Require().ErrorIs(err, errs.ErrConflict)

	active, err := suite.repository.GetActiveByOrder(ctx, orderID)
	suite.Require().NoError(err)
	suite.Require().NotNil(active)
	suite.True(active.ID().IsEqual(first.ID()))

	suite.deliver(first)

	active, err = suite.repository.GetActiveByOrder(ctx, orderID)
	suite.Require().NoError(err)
	suite.Nil(active)

	second := suite.newTask(orderID)
	suite.Require().NoError(suite.repository.Add(ctx, second))
}

func (suite *TaskRepositoryIntegrationTestSuite) TestClaimPingSlot() {
	ctx := suite.T().Context()
	dt := suite.newTask(kernel.NewUUID())
	suite.Require().NoError(suite.repository.Add(ctx, dt))
	t0 := time.Now().UTC()

	ok, err := suite.repository.ClaimPingSlot(ctx, dt.ID(), t0, 10*time.Second)
	suite.Require().NoError(err)
	suite.True(ok)

	ok, err = suite.repository.ClaimPingSlot(ctx, dt.ID(), t0.Add(5*time.Second), 10*time.Second)
	suite.Require().NoError(err)
	suite.False(ok, "ping inside the minimum interval is dropped")

	ok, err = suite.repository.ClaimPingSlot(ctx, dt.ID(), t0.Add(10*time.Second), 10*time.Second)
	suite.Require().NoError(err)
	suite.True(ok)
}

func (suite *TaskRepositoryIntegrationTestSuite) TestClaimPingSlot_DeliveredTask() {
	ctx := suite.T().Context()
	dt := suite.newTask(kernel.NewUUID())
	suite.Require().NoError(suite.repository.Add(ctx, dt))
	suite.deliver(dt)

	ok, err := suite.repository.ClaimPingSlot(ctx, dt.ID(), time.Now().UTC(), 10*time.Second)

	suite.Require().NoError(err)
	suite.False(ok, "a delivered task accepts no more pings")
}

func (suite *TaskRepositoryIntegrationTestSuite) TestUpdatePositionIfNewer() {
	ctx := suite.T().Context()
	dt := suite.newTask(kernel.NewUUID())
	suite.Require().NoError(suite.repository.Add(ctx, dt))
	t0 := time.Now().UTC().Truncate(time.Millisecond)

	p1, _ := kernel.NewGeoPoint(-6.2, 106.8)
	p2, _ := kernel.NewGeoPoint(-6.3, 106.9)

	updated, err := suite.repository.UpdatePositionIfNewer(ctx, dt.ID(), p1, t0)
	suite.Require().NoError(err)
	suite.True(updated)

	updated, err = suite.repository.UpdatePositionIfNewer(ctx, dt.ID(), p2, t0.Add(-time.Minute))
	suite.Require().NoError(err)
	suite.False(updated, "older sample must not overwrite the cache")

	updated, err = suite.repository.UpdatePositionIfNewer(ctx, dt.ID(), p2, t0)
	suite.Require().NoError(err)
	suite.False(updated, "equal timestamp is not newer")

	loaded, err := suite.repository.Get(ctx, dt.ID())
	suite.Require().NoError(err)
	suite.Require().NotNil(loaded.LastPosition())
	suite.InDelta(-6.2, loaded.LastPosition().Lat(), 1e-9)
	suite.WithinDuration(t0, *loaded.LastPingAt(), time.Millisecond)

	suite.deliver(loaded)
	updated, err = suite.repository.UpdatePositionIfNewer(ctx, dt.ID(), p2, t0.Add(time.Hour))
	suite.Require().NoError(err)
	suite.False(updated, "delivered task keeps its last position")
}

func TestTaskRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(TaskRepositoryIntegrationTestSuite))
}
