// Package mocks provides test doubles for the analytics client.
package mocks

import (
	"context"

	analytics "github.com/evently-app/evently/pkg/analytics"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// ListCities provides a mock function with given fields: ctx
func (_m *MockClient) ListCities(ctx context.Context) ([]analytics.City, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for ListCities")
	}

	var r0 []analytics.City
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context) ([]analytics.City, error)); ok {
		return rf(ctx)
	}
	if rf, ok := ret.Get(0).(func(context.Context) []analytics.City); ok {
		r0 = rf(ctx)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]analytics.City)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetCity provides a mock function with given fields: ctx, id
func (_m *MockClient) GetCity(ctx context.Context, id int) (*analytics.City, error) {
	ret := _m.Called(ctx, id)

	if len(ret) == 0 {
		panic("no return value specified for GetCity")
	}

	var r0 *analytics.City
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, int) (*analytics.City, error)); ok {
		return rf(ctx, id)
	}
	if rf, ok := ret.Get(0).(func(context.Context, int) *analytics.City); ok {
		r0 = rf(ctx, id)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*analytics.City)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, int) error); ok {
		r1 = rf(ctx, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListEvents provides a mock function with given fields: ctx, filter
func (_m *MockClient) ListEvents(ctx context.Context, filter analytics.EventFilter) ([]analytics.Event, error) {
	ret := _m.Called(ctx, filter)

	if len(ret) == 0 {
		panic("no return value specified for ListEvents")
	}

	var r0 []analytics.Event
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, analytics.EventFilter) ([]analytics.Event, error)); ok {
		return rf(ctx, filter)
	}
	if rf, ok := ret.Get(0).(func(context.Context, analytics.EventFilter) []analytics.Event); ok {
		r0 = rf(ctx, filter)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]analytics.Event)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, analytics.EventFilter) error); ok {
		r1 = rf(ctx, filter)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetEvent provides a mock function with given fields: ctx, id
func (_m *MockClient) GetEvent(ctx context.Context, id int) (*analytics.Event, error) {
	ret := _m.Called(ctx, id)

	if len(ret) == 0 {
		panic("no return value specified for GetEvent")
	}

	var r0 *analytics.Event
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, int) (*analytics.Event, error)); ok {
		return rf(ctx, id)
	}
	if rf, ok := ret.Get(0).(func(context.Context, int) *analytics.Event); ok {
		r0 = rf(ctx, id)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*analytics.Event)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, int) error); ok {
		r1 = rf(ctx, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetEventImpact provides a mock function with given fields: ctx, eventID, recalculate
func (_m *MockClient) GetEventImpact(ctx context.Context, eventID int, recalculate bool) (*analytics.EventImpact, error) {
	ret := _m.Called(ctx, eventID, recalculate)

	if len(ret) == 0 {
		panic("no return value specified for GetEventImpact")
	}

	var r0 *analytics.EventImpact
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, int, bool) (*analytics.EventImpact, error)); ok {
		return rf(ctx, eventID, recalculate)
	}
	if rf, ok := ret.Get(0).(func(context.Context, int, bool) *analytics.EventImpact); ok {
		r0 = rf(ctx, eventID, recalculate)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*analytics.EventImpact)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, int, bool) error); ok {
		r1 = rf(ctx, eventID, recalculate)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// DashboardKPIs provides a mock function with given fields: ctx
func (_m *MockClient) DashboardKPIs(ctx context.Context) (*analytics.DashboardKPIs, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for DashboardKPIs")
	}

	var r0 *analytics.DashboardKPIs
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context) (*analytics.DashboardKPIs, error)); ok {
		return rf(ctx)
	}
	if rf, ok := ret.Get(0).(func(context.Context) *analytics.DashboardKPIs); ok {
		r0 = rf(ctx)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*analytics.DashboardKPIs)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// CompareEvents provides a mock function with given fields: ctx, eventIDs
func (_m *MockClient) CompareEvents(ctx context.Context, eventIDs []int) (*analytics.Comparison, error) {
	ret := _m.Called(ctx, eventIDs)

	if len(ret) == 0 {
		panic("no return value specified for CompareEvents")
	}

	var r0 *analytics.Comparison
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, []int) (*analytics.Comparison, error)); ok {
		return rf(ctx, eventIDs)
	}
	if rf, ok := ret.Get(0).(func(context.Context, []int) *analytics.Comparison); ok {
		r0 = rf(ctx, eventIDs)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*analytics.Comparison)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, []int) error); ok {
		r1 = rf(ctx, eventIDs)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// CompareCities provides a mock function with given fields: ctx, cityIDs
func (_m *MockClient) CompareCities(ctx context.Context, cityIDs []int) (*analytics.Comparison, error) {
	ret := _m.Called(ctx, cityIDs)

	if len(ret) == 0 {
		panic("no return value specified for CompareCities")
	}

	var r0 *analytics.Comparison
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, []int) (*analytics.Comparison, error)); ok {
		return rf(ctx, cityIDs)
	}
	if rf, ok := ret.Get(0).(func(context.Context, []int) *analytics.Comparison); ok {
		r0 = rf(ctx, cityIDs)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*analytics.Comparison)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, []int) error); ok {
		r1 = rf(ctx, cityIDs)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// SimulateAttendance provides a mock function with given fields: ctx, scenario
func (_m *MockClient) SimulateAttendance(ctx context.Context, scenario analytics.AttendanceScenario) (*analytics.AttendanceSimulation, error) {
	ret := _m.Called(ctx, scenario)

	if len(ret) == 0 {
		panic("no return value specified for SimulateAttendance")
	}

	var r0 *analytics.AttendanceSimulation
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, analytics.AttendanceScenario) (*analytics.AttendanceSimulation, error)); ok {
		return rf(ctx, scenario)
	}
	if rf, ok := ret.Get(0).(func(context.Context, analytics.AttendanceScenario) *analytics.AttendanceSimulation); ok {
		r0 = rf(ctx, scenario)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*analytics.AttendanceSimulation)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, analytics.AttendanceScenario) error); ok {
		r1 = rf(ctx, scenario)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// SimulateGrowth provides a mock function with given fields: ctx, eventID, years, annualGrowthPct
func (_m *MockClient) SimulateGrowth(ctx context.Context, eventID int, years int, annualGrowthPct float64) (*analytics.GrowthProjection, error) {
	ret := _m.Called(ctx, eventID, years, annualGrowthPct)

	if len(ret) == 0 {
		panic("no return value specified for SimulateGrowth")
	}

	var r0 *analytics.GrowthProjection
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, int, int, float64) (*analytics.GrowthProjection, error)); ok {
		return rf(ctx, eventID, years, annualGrowthPct)
	}
	if rf, ok := ret.Get(0).(func(context.Context, int, int, float64) *analytics.GrowthProjection); ok {
		r0 = rf(ctx, eventID, years, annualGrowthPct)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*analytics.GrowthProjection)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, int, int, float64) error); ok {
		r1 = rf(ctx, eventID, years, annualGrowthPct)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// TimeSeries provides a mock function with given fields: ctx, q
func (_m *MockClient) TimeSeries(ctx context.Context, q analytics.TimeSeriesQuery) (*analytics.TimeSeries, error) {
	ret := _m.Called(ctx, q)

	if len(ret) == 0 {
		panic("no return value specified for TimeSeries")
	}

	var r0 *analytics.TimeSeries
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, analytics.TimeSeriesQuery) (*analytics.TimeSeries, error)); ok {
		return rf(ctx, q)
	}
	if rf, ok := ret.Get(0).(func(context.Context, analytics.TimeSeriesQuery) *analytics.TimeSeries); ok {
		r0 = rf(ctx, q)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*analytics.TimeSeries)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, analytics.TimeSeriesQuery) error); ok {
		r1 = rf(ctx, q)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Predict provides a mock function with given fields: ctx, in
func (_m *MockClient) Predict(ctx context.Context, in analytics.PredictionInput) (*analytics.Prediction, error) {
	ret := _m.Called(ctx, in)

	if len(ret) == 0 {
		panic("no return value specified for Predict")
	}

	var r0 *analytics.Prediction
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, analytics.PredictionInput) (*analytics.Prediction, error)); ok {
		return rf(ctx, in)
	}
	if rf, ok := ret.Get(0).(func(context.Context, analytics.PredictionInput) *analytics.Prediction); ok {
		r0 = rf(ctx, in)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*analytics.Prediction)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, analytics.PredictionInput) error); ok {
		r1 = rf(ctx, in)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// PredictionOptions provides a mock function with given fields: ctx
func (_m *MockClient) PredictionOptions(ctx context.Context) (*analytics.PredictionOptions, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for PredictionOptions")
	}

	var r0 *analytics.PredictionOptions
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context) (*analytics.PredictionOptions, error)); ok {
		return rf(ctx)
	}
	if rf, ok := ret.Get(0).(func(context.Context) *analytics.PredictionOptions); ok {
		r0 = rf(ctx)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*analytics.PredictionOptions)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient. It also registers a
// testing interface on the mock and a cleanup function to assert the mocks
// expectations.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
