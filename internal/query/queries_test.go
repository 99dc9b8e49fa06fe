package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/evently-app/evently/pkg/analytics"
	"github.com/evently-app/evently/pkg/analytics/mocks"
)

func analyticsFilter(cityID int, eventType string, year int) analytics.EventFilter {
	return analytics.EventFilter{CityID: cityID, EventType: eventType, Year: year}
}

func TestQueries_CitiesCachedAcrossCalls(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockClient(t)
	client.On("ListCities", mock.Anything).Return([]analytics.City{{ID: 1, Name: "London"}}, nil).Once()

	q := NewQueries(client, New())
	r1 := q.Cities(context.Background())
	r2 := q.Cities(context.Background())

	require.True(t, r1.Ready())
	assert.Equal(t, "London", r2.Data[0].Name)
}

func TestQueries_EventsFilterIdentity(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockClient(t)
	sports := analyticsFilter(0, "sports", 0)
	all := analyticsFilter(0, "", 0)
	client.On("ListEvents", mock.Anything, sports).Return([]analytics.Event{{ID: 1}}, nil).Once()
	client.On("ListEvents", mock.Anything, all).Return([]analytics.Event{{ID: 1}, {ID: 2}}, nil).Once()

	q := NewQueries(client, New())
	assert.Len(t, q.Events(context.Background(), sports).Data, 1)
	assert.Len(t, q.Events(context.Background(), all).Data, 2)
	assert.Len(t, q.Events(context.Background(), sports).Data, 1)
}

func TestQueries_EventNotFound(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockClient(t)
	client.On("GetEvent", mock.Anything, 99).Return(nil, &analytics.HTTPError{StatusCode: 404, Detail: "Event not found"})

	q := NewQueries(client, New())
	r := q.Event(context.Background(), 99)
	assert.False(t, r.HasData)
	assert.Equal(t, analytics.KindNotFound, r.Kind())
}

func TestQueries_RecalculateImpactReplacesValue(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockClient(t)
	client.On("GetEventImpact", mock.Anything, 5, false).
		Return(&analytics.EventImpact{EventID: 5, JobsCreated: analytics.Value(10)}, nil).Once()
	client.On("GetEventImpact", mock.Anything, 5, true).
		Return(&analytics.EventImpact{EventID: 5, JobsCreated: analytics.Value(12)}, nil).Once()

	q := NewQueries(client, New())
	r := q.Impact(context.Background(), 5)
	jobs, _ := r.Data.JobsCreated.Int()
	assert.Equal(t, int64(10), jobs)

	r = q.RecalculateImpact(context.Background(), 5)
	jobs, _ = r.Data.JobsCreated.Int()
	assert.Equal(t, int64(12), jobs)

	r = q.Impact(context.Background(), 5)
	jobs, _ = r.Data.JobsCreated.Int()
	assert.Equal(t, int64(12), jobs)
}

func TestQueries_SimulationsKeyedByParameters(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockClient(t)
	e := 0.3
	s1 := analytics.AttendanceScenario{EventID: 1, AttendanceChangePct: 10, PriceElasticity: &e}
	s2 := analytics.AttendanceScenario{EventID: 1, AttendanceChangePct: 20, PriceElasticity: &e}
	client.On("SimulateAttendance", mock.Anything, s1).Return(&analytics.AttendanceSimulation{EventName: "a"}, nil).Once()
	client.On("SimulateAttendance", mock.Anything, s2).Return(&analytics.AttendanceSimulation{EventName: "b"}, nil).Once()
	client.On("SimulateGrowth", mock.Anything, 1, 5, 10.0).Return(&analytics.GrowthProjection{ProjectionYears: 5}, nil).Once()

	q := NewQueries(client, New())
	assert.Equal(t, "a", q.SimulateAttendance(context.Background(), s1).Data.EventName)
	assert.Equal(t, "b", q.SimulateAttendance(context.Background(), s2).Data.EventName)
	assert.Equal(t, "a", q.SimulateAttendance(context.Background(), s1).Data.EventName)
	assert.Equal(t, 5, q.SimulateGrowth(context.Background(), 1, 5, 10).Data.ProjectionYears)
	assert.Equal(t, 5, q.SimulateGrowth(context.Background(), 1, 5, 10).Data.ProjectionYears)
}

func TestQueries_Compare(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockClient(t)
	client.On("CompareCities", mock.Anything, []int{1, 2}).Return(&analytics.Comparison{Type: "cities"}, nil).Once()
	client.On("CompareEvents", mock.Anything, []int{3, 4}).Return(&analytics.Comparison{Type: "events"}, nil).Once()

	q := NewQueries(client, New())
	assert.Equal(t, "cities", q.CompareCities(context.Background(), []int{1, 2}).Data.Type)
	assert.Equal(t, "events", q.CompareEvents(context.Background(), []int{3, 4}).Data.Type)
}

func TestQueries_KPIsAndOptions(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockClient(t)
	client.On("DashboardKPIs", mock.Anything).Return(&analytics.DashboardKPIs{TotalCities: 4}, nil).Once()
	client.On("PredictionOptions", mock.Anything).Return(&analytics.PredictionOptions{EventTypes: []string{"sports"}}, nil).Once()
	client.On("GetCity", mock.Anything, 4).Return(&analytics.City{ID: 4, Name: "Tokyo"}, nil).Once()

	q := NewQueries(client, New())
	assert.Equal(t, 4, q.KPIs(context.Background()).Data.TotalCities)
	assert.Equal(t, []string{"sports"}, q.PredictionOptions(context.Background()).Data.EventTypes)
	assert.Equal(t, "Tokyo", q.City(context.Background(), 4).Data.Name)
	assert.Equal(t, "Tokyo", q.City(context.Background(), 4).Data.Name)
}

func TestQueries_WarmSharesRequestWithFirstPage(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockClient(t)
	client.On("ListCities", mock.Anything).Return([]analytics.City{{ID: 1, Name: "London"}}, nil).Once()
	client.On("PredictionOptions", mock.Anything).Return(&analytics.PredictionOptions{EventTypes: []string{"sports"}}, nil).Once()

	q := NewQueries(client, New())
	q.Warm(context.Background())

	cities := q.Cities(context.Background())
	require.True(t, cities.Ready())
	assert.Equal(t, "London", cities.Data[0].Name)

	opts := q.PredictionOptions(context.Background())
	require.True(t, opts.Ready())
	assert.Equal(t, []string{"sports"}, opts.Data.EventTypes)
}
