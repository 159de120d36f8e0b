package queries_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/pgtest"
	"fulfillment/internal/adapters/out/postgres/taskrepo"
	"fulfillment/internal/adapters/out/postgres/trackingrepo"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/task"
	"fulfillment/internal/core/domain/model/tracking"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type mockAggregateTracker struct {
	mock.Mock
}

func (m *mockAggregateTracker) TrackAggregate(_ kernel.UUID, _ any) {}

type TrackOrderQueryHandlerTestSuite struct {
	suite.Suite
	pg       *pgtest.Database
	handler  queries.TrackOrderQueryHandler
	orders   *orderrepo.GormOrderRepository
	tasks    *taskrepo.GormTaskRepository
	logs     *trackingrepo.GormTrackingLogRepository
	driverID kernel.UUID
}

func (suite *TrackOrderQueryHandlerTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.pg = pg

	suite.handler = queries.NewTrackOrderQueryHandler(pg.DB)
	suite.orders = orderrepo.NewGormOrderRepository(pg.DB, &mockAggregateTracker{})
	suite.tasks = taskrepo.NewGormTaskRepository(pg.DB, &mockAggregateTracker{})
	suite.logs = trackingrepo.NewGormTrackingLogRepository(pg.DB)
}

func (suite *TrackOrderQueryHandlerTestSuite) TearDownSuite() {
	if suite.pg != nil {
		suite.Require().NoError(suite.pg.Terminate(context.Background()))
	}
}

func (suite *TrackOrderQueryHandlerTestSuite) SetupTest() {
	suite.Require().NoError(suite.pg.Truncate())

	suite.driverID = kernel.NewUUID()
	suite.Require().NoError(suite.pg.DB.Create(&postgres.DriverProfileDTO{
		ID:    suite.driverID.Bytes(),
		Name:  "Agus",
		Phone: "+62813000111",
	}).Error)
}

func (suite *TrackOrderQueryHandlerTestSuite) track(identifier string) (queries.TrackOrderQueryResponse, error) {
	query, err := queries.NewTrackOrderQuery(identifier)
	suite.Require().NoError(err)
	return suite.handler.Handle(suite.T().Context(), query)
}

func (suite *TrackOrderQueryHandlerTestSuite) createOrder(number, trackingNumber string) *order.Order {
	recipient, err := kernel.NewRecipient("Siti", "+62811", "Jl. Merdeka 1")
	suite.Require().NoError(err)
	o, err := order.NewOrder(kernel.NewUUID(), number, kernel.NewUUID(), 150_000, recipient, time.Now().UTC())
	suite.Require().NoError(err)
	if trackingNumber != "" {
		suite.Require().NoError(o.SetShipment("JNE", trackingNumber, nil))
	}
	suite.Require().NoError(suite.orders.Add(suite.T().Context(), o))
	return o
}

func (suite *TrackOrderQueryHandlerTestSuite) dispatch(o *order.Order) *task.DriverTask {
	ctx := suite.T().Context()
	dt, err := task.NewDriverTask(kernel.NewUUID(), o.ID(), suite.driverID, o.Recipient(), nil, time.Now().UTC())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.tasks.Add(ctx, dt))

	_, err = o.MoveTo(order.Processing)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.orders.Update(ctx, o))
	return dt
}

func (suite *TrackOrderQueryHandlerTestSuite) appendLog(taskID kernel.UUID, lat, lng float64, at time.Time) {
	point, err := kernel.NewGeoPoint(lat, lng)
	suite.Require().NoError(err)
	entry, err := tracking.NewLog(kernel.NewUUID(), taskID, point, tracking.Sample{RecordedAt: at}, time.Now().UTC())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.logs.Add(suite.T().Context(), entry))
}

func (suite *TrackOrderQueryHandlerTestSuite) TestHandle_UnknownOrder() {
	_, err := suite.track("ORD-404")

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *TrackOrderQueryHandlerTestSuite) TestHandle_NotYetAssigned() {
	o := suite.createOrder("ORD-1001", "")

	view, err := suite.track("ORD-1001")

	suite.Require().NoError(err)
	suite.Nil(view.Driver)
	suite.Equal(queries.MessageNotYetAssigned, view.Message)
	suite.Equal("PENDING", view.Order.Status)
	suite.Equal(o.ID(), view.Order.ID)
	suite.Equal("Jl. Merdeka 1", view.DeliveryAddress)
}

func (suite *TrackOrderQueryHandlerTestSuite) TestHandle_ByTrackingNumber() {
	suite.createOrder("ORD-1001", "JNE-777")

	view, err := suite.track("JNE-777")

	suite.Require().NoError(err)
	suite.Equal("ORD-1001", view.Order.Number)
	suite.Equal("JNE", view.Order.ShippingVendor)
	suite.Equal("JNE-777", view.Order.TrackingNumber)
}

func (suite *TrackOrderQueryHandlerTestSuite) TestHandle_NoPositionYet() {
	o := suite.createOrder("ORD-1002", "")
	dt := suite.dispatch(o)

	view, err := suite.track("ORD-1002")

	suite.Require().NoError(err)
	suite.Require().NotNil(view.Driver)
	suite.Equal(dt.ID(), view.Driver.TaskID)
	suite.Equal("ASSIGNED", view.Driver.TaskStatus)
	suite.Equal("Agus", view.Driver.Name)
	suite.Equal("+62813000111", view.Driver.Phone)
	suite.Nil(view.Driver.Position)
	suite.Equal(queries.MessageLocationUnavailable, view.Message)
	suite.Equal("PROCESSING", view.Order.Status)
}

func (suite *TrackOrderQueryHandlerTestSuite) TestHandle_LatestLogWinsOverCache() {
	ctx := suite.T().Context()
	o := suite.createOrder("ORD-1002", "")
	dt := suite.dispatch(o)

	older := time.Now().Add(-2 * time.Minute).UTC().Truncate(time.Microsecond)
	newer := time.Now().Add(-30 * time.Second).UTC().Truncate(time.Microsecond)

	cached, err := kernel.NewGeoPoint(-6.90, 107.60)
	suite.Require().NoError(err)
	_, err = suite.tasks.UpdatePositionIfNewer(ctx, dt.ID(), cached, older)
	suite.Require().NoError(err)
	suite.appendLog(dt.ID(), -6.90, 107.60, older)
	// log row written, cache update lost
	suite.appendLog(dt.ID(), -6.91, 107.61, newer)

	view, err := suite.track("ORD-1002")

	suite.Require().NoError(err)
	suite.Require().NotNil(view.Driver.Position)
	suite.InDelta(-6.91, view.Driver.Position.Lat, 1e-9)
	suite.InDelta(107.61, view.Driver.Position.Lng, 1e-9)
	suite.True(newer.Equal(view.Driver.Position.LastUpdate))
	suite.Equal(queries.MessageOnTheWay, view.Message)
}

func (suite *TrackOrderQueryHandlerTestSuite) TestHandle_CacheFallback() {
	ctx := suite.T().Context()
	o := suite.createOrder("ORD-1002", "")
	dt := suite.dispatch(o)

	at := time.Now().Add(-time.Minute).UTC().Truncate(time.Microsecond)
	point, err := kernel.NewGeoPoint(-6.92, 107.62)
	suite.Require().NoError(err)
	_, err = suite.tasks.UpdatePositionIfNewer(ctx, dt.ID(), point, at)
	suite.Require().NoError(err)

	view, err := suite.track("ORD-1002")

	suite.Require().NoError(err)
	suite.Require().NotNil(view.Driver.Position)
	suite.InDelta(-6.92, view.Driver.Position.Lat, 1e-9)
	suite.True(at.Equal(view.Driver.Position.LastUpdate))
}

func (suite *TrackOrderQueryHandlerTestSuite) TestHandle_UnknownDriverProfile() {
	o := suite.createOrder("ORD-1003", "")
	dt, err := task.NewDriverTask(kernel.NewUUID(), o.ID(), kernel.NewUUID(), o.Recipient(), nil, time.Now().UTC())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.tasks.Add(suite.T().Context(), dt))

	view, err := suite.track("ORD-1003")

	suite.Require().NoError(err)
	suite.Require().NotNil(view.Driver)
	suite.Empty(view.Driver.Name)
	suite.Empty(view.Driver.Phone)
}

func (suite *TrackOrderQueryHandlerTestSuite) TestHandle_DriverLookupFailureDegrades() {
	o := suite.createOrder("ORD-1004", "")
	suite.dispatch(o)

	suite.Require().NoError(suite.pg.DB.Exec("ALTER TABLE drivers RENAME TO drivers_offline").Error)
	defer func() {
		suite.Require().NoError(suite.pg.DB.Exec("ALTER TABLE drivers_offline RENAME TO drivers").Error)
	}()

	view, err := suite.track("ORD-1004")

	suite.Require().NoError(err)
	suite.Nil(view.Driver)
	suite.Equal(queries.MessageLocationUnavailable, view.Message)
	suite.Equal("ORD-1004", view.Order.Number)
	suite.Equal("PROCESSING", view.Order.Status)
}

func (suite *TrackOrderQueryHandlerTestSuite) TestHandle_InvalidQuery() {
	_, err := suite.handler.Handle(suite.T().Context(), queries.TrackOrderQuery{})

	suite.Require().ErrorIs(err, queries.ErrTrackOrderQueryIsNotConstructed)
}

func TestTrackOrderQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TrackOrderQueryHandlerTestSuite))
}
