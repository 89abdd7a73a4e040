package trafficlight_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/optitraffic/entity"
	"github.com/tsinghua-fib-lab/optitraffic/entity/junction/trafficlight"
	"github.com/tsinghua-fib-lab/optitraffic/utils/randengine"
)

func TestNetworkPredict(t *testing.T) {
	n := trafficlight.NewNetwork(testObsDim, len(entity.ActionStates), randengine.New(42))

	obs := []float64{1, 0, 2, 0, 0.5, 0, -3, 4}
	q := n.Predict(obs)
	assert.Len(t, q, len(entity.ActionStates))
	for _, v := range q {
		assert.False(t, math.IsNaN(v))
		assert.False(t, math.IsInf(v, 0))
	}
	// 前向传播是确定性的
	assert.Equal(t, q, n.Predict(obs))

	assert.Panics(t, func() { n.Predict(make([]float64, testObsDim+1)) })
}

func TestNetworkStepConverges(t *testing.T) {
	n := trafficlight.NewNetwork(testObsDim, len(entity.ActionStates), randengine.New(42))

	// 固定小批量上反复回归，损失必须下降
	states := make([][]float64, 16)
	actions := make([]int, 16)
	targets := make([]float64, 16)
	for i := range states {
		states[i] = make([]float64, testObsDim)
		for j := range states[i] {
			states[i][j] = float64((i+j)%5) / 5
		}
		actions[i] = i % len(entity.ActionStates)
		targets[i] = float64(i%3) - 1
	}

	first, ok := n.Step(states, actions, targets)
	assert.True(t, ok)
	var last float64
	for i := 0; i < 1000; i++ {
		last, ok = n.Step(states, actions, targets)
		assert.True(t, ok)
	}
	assert.Less(t, last, first)
	assert.Less(t, last, 0.1)
}

func TestNetworkCloneIsIndependent(t *testing.T) {
	n := trafficlight.NewNetwork(testObsDim, len(entity.ActionStates), randengine.New(42))
	c := n.Clone()

	obs := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	before := c.Predict(obs)

	states := [][]float64{obs}
	_, ok := n.Step(states, []int{0}, []float64{10})
	assert.True(t, ok)

	// 训练原网络不影响副本
	assert.Equal(t, before, c.Predict(obs))
	assert.NotEqual(t, before, n.Predict(obs))
}

func TestNetworkCopyFrom(t *testing.T) {
	n := trafficlight.NewNetwork(testObsDim, len(entity.ActionStates), randengine.New(42))
	o := trafficlight.NewNetwork(testObsDim, len(entity.ActionStates), randengine.New(7))

	obs := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	assert.NotEqual(t, n.Predict(obs), o.Predict(obs))

	o.CopyFrom(n)
	assert.Equal(t, n.Predict(obs), o.Predict(obs))
}

func TestNetworkSaveLoad(t *testing.T) {
	n := trafficlight.NewNetwork(testObsDim, len(entity.ActionStates), randengine.New(42))
	obs := []float64{0.5, -1, 2, 0, 1, 3, -2, 0.25}

	var buf bytes.Buffer
	assert.NoError(t, n.Save(&buf))

	o := trafficlight.NewNetwork(testObsDim, len(entity.ActionStates), randengine.New(7))
	assert.NoError(t, o.Load(&buf))
	assert.Equal(t, n.Predict(obs), o.Predict(obs))

	// 结构不匹配时报错
	var buf2 bytes.Buffer
	assert.NoError(t, n.Save(&buf2))
	mismatched := trafficlight.NewNetwork(testObsDim+2, len(entity.ActionStates), randengine.New(7))
	assert.Error(t, mismatched.Load(&buf2))
}
