package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type LevelTestSuite struct {
	suite.Suite
}

func TestLevelSuite(t *testing.T) {
	suite.Run(t, new(LevelTestSuite))
}

func (suite *LevelTestSuite) TestLogLevelValid() {
	for _, level := range AllLogLevels() {
		suite.True(level.Valid())
	}

	suite.False(LogLevel("TRACE").Valid())
	suite.False(LogLevel("").Valid())
	suite.False(LogLevel("info").Valid())
}

func (suite *LevelTestSuite) TestSevere() {
	suite.True(LogLevelError.Severe())
	suite.True(LogLevelCritical.Severe())

	suite.False(LogLevelDebug.Severe())
	suite.False(LogLevelInfo.Severe())
	suite.False(LogLevelWarning.Severe())
}

func (suite *LevelTestSuite) TestLogCategoryValid() {
	for _, category := range AllLogCategories() {
		suite.True(category.Valid())
	}

	suite.False(LogCategory("AUDIT").Valid())
	suite.False(LogCategory("").Valid())
}

func (suite *LevelTestSuite) TestRoutingClassValid() {
	for _, class := range AllRoutingClasses() {
		suite.True(class.Valid())
	}

	suite.False(RoutingClass("BATCH").Valid())
	suite.False(RoutingClass("").Valid())
}

func (suite *LevelTestSuite) TestHotTTL() {
	suite.Equal(7*24*time.Hour, RoutingRealTime.HotTTL())
	suite.Equal(30*24*time.Hour, RoutingDashboard.HotTTL())
	suite.Equal(14*24*time.Hour, RoutingCognitiveLive.HotTTL())

	suite.Equal(time.Duration(0), RoutingArchival.HotTTL())
	suite.Equal(time.Duration(0), RoutingBulk.HotTTL())
	suite.Equal(time.Duration(0), RoutingAnalytics.HotTTL())
}

func (suite *LevelTestSuite) TestTierEligibility() {
	// Every routing class targets at least one tier.
	for _, class := range AllRoutingClasses() {
		suite.True(class.HotEligible() || class.ColdEligible(), "class %s targets no tier", class)
	}

	suite.True(RoutingRealTime.HotEligible())
	suite.True(RoutingDashboard.HotEligible())
	suite.True(RoutingCognitiveLive.HotEligible())
	suite.False(RoutingArchival.HotEligible())

	suite.True(RoutingArchival.ColdEligible())
	suite.True(RoutingBulk.ColdEligible())
	suite.True(RoutingAnalytics.ColdEligible())
	suite.False(RoutingDashboard.ColdEligible())
}
