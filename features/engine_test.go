package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/aoterocom/AORiskTrader/models"
	"gitlab.com/aoterocom/AORiskTrader/tests/utils"
)

func TestComputeWarmUp(t *testing.T) {
	bars := utils.BarsFromCloses("BTCUSDT", utils.WaveCloses(210, 100))
	vectors, err := NewEngine().Compute(bars)
	require.NoError(t, err)
	require.Len(t, vectors, 210)

	assert.Nil(t, vectors[7].EMA9)
	assert.NotNil(t, vectors[8].EMA9)
	assert.Nil(t, vectors[19].EMA21)
	assert.NotNil(t, vectors[20].EMA21)
	assert.Nil(t, vectors[198].EMA200)
	assert.NotNil(t, vectors[199].EMA200)
	assert.Nil(t, vectors[13].RSI14)
	assert.NotNil(t, vectors[14].RSI14)
	assert.Nil(t, vectors[24].MACD)
	assert.NotNil(t, vectors[25].MACD)
	assert.Nil(t, vectors[32].MACDSignal)
	assert.NotNil(t, vectors[33].MACDSignal)
	assert.Nil(t, vectors[12].ATR14)
	assert.NotNil(t, vectors[13].ATR14)
	assert.Nil(t, vectors[18].BollingerMiddle)
	assert.NotNil(t, vectors[19].BollingerMiddle)
	assert.Nil(t, vectors[18].VolumeSMA)
	assert.NotNil(t, vectors[19].VolumeSMA)
}

func TestComputeConstantSeries(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 250
	}
	vectors, err := NewEngine().Compute(utils.BarsFromCloses("ETHUSDT", closes))
	require.NoError(t, err)

	last := vectors[39]
	assert.InDelta(t, 250.0, *last.EMA9, 1e-9)
	assert.InDelta(t, 250.0, *last.EMA21, 1e-9)
	assert.Equal(t, 50.0, *last.RSI14)
	assert.InDelta(t, 250.0, *last.BollingerMiddle, 1e-6)
	assert.InDelta(t, *last.BollingerMiddle, *last.BollingerUpper, 1e-6)
	assert.InDelta(t, 0.0, *last.MACDHistogram, 1e-9)
}

func TestComputeIsAPureFunctionOfTheWindow(t *testing.T) {
	bars := utils.BarsFromCloses("BTCUSDT", utils.WaveCloses(120, 100))
	engine := NewEngine()

	first, err := engine.Latest(bars[20:])
	require.NoError(t, err)
	second, err := engine.Latest(append([]models.Bar(nil), bars[20:]...))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeRejectsUnorderedBars(t *testing.T) {
	bars := utils.BarsFromCloses("BTCUSDT", utils.WaveCloses(10, 100))
	bars[5].Timestamp = bars[3].Timestamp

	_, err := NewEngine().Compute(bars)
	assert.ErrorContains(t, err, "out of order")
}

func TestComputeRejectsUnknownInterval(t *testing.T) {
	bars := utils.BarsFromCloses("BTCUSDT", utils.WaveCloses(3, 100))
	bars[1].Interval = "soon"

	_, err := NewEngine().Compute(bars)
	assert.Error(t, err)
}

func TestLatestWithoutBars(t *testing.T) {
	_, err := NewEngine().Latest(nil)
	assert.ErrorIs(t, err, models.ErrInsufficientHistory)
}

func TestTimeSeriesAcceptsGaps(t *testing.T) {
	bars := utils.BarsFromCloses("BTCUSDT", []float64{1, 2, 3})
	bars[2].Timestamp = bars[2].Timestamp.Add(time.Hour)

	series, err := TimeSeries(bars)
	require.NoError(t, err)
	assert.Len(t, series.Candles, 3)
}
