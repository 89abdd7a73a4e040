package trafficlight

import (
	"encoding/gob"
	"fmt"
	"io"
	"math"

	"github.com/tsinghua-fib-lab/optitraffic/utils/randengine"
	"gonum.org/v1/gonum/mat"
)

// 网络结构与优化器超参数
const (
	hidden1Dim = 128  // 第一隐层宽度
	hidden2Dim = 64   // 第二隐层宽度
	learnRate  = 1e-3 // Adam学习率
	adamBeta1  = 0.9
	adamBeta2  = 0.999
	adamEps    = 1e-8
)

// Network 动作价值网络
// 功能：观测向量→每个动作一个标量估值的多层感知机
// （输入→128→64→动作数，隐层ReLU），带Adam优化器状态
type Network struct {
	dims []int // 各层宽度 {输入, 128, 64, 输出}

	weights []*mat.Dense // 每层权重，weights[l]为dims[l]×dims[l+1]
	biases  []*mat.Dense // 每层偏置，1×dims[l+1]

	// Adam一阶/二阶矩
	mWeights, vWeights []*mat.Dense
	mBiases, vBiases   []*mat.Dense
	step               int // 已执行的优化步数
}

// NewNetwork 创建动作价值网络
// 参数：inputDim-观测维数，outputDim-动作数，generator-随机数引擎
// 返回：Glorot均匀初始化的网络实例
func NewNetwork(inputDim, outputDim int, generator *randengine.Engine) *Network {
	n := &Network{dims: []int{inputDim, hidden1Dim, hidden2Dim, outputDim}}
	for l := 0; l+1 < len(n.dims); l++ {
		in, out := n.dims[l], n.dims[l+1]
		w := mat.NewDense(in, out, nil)
		// Glorot均匀初始化
		limit := math.Sqrt(6 / float64(in+out))
		for i := 0; i < in; i++ {
			for j := 0; j < out; j++ {
				w.Set(i, j, (generator.Float64()*2-1)*limit)
			}
		}
		n.weights = append(n.weights, w)
		n.biases = append(n.biases, mat.NewDense(1, out, nil))
		n.mWeights = append(n.mWeights, mat.NewDense(in, out, nil))
		n.vWeights = append(n.vWeights, mat.NewDense(in, out, nil))
		n.mBiases = append(n.mBiases, mat.NewDense(1, out, nil))
		n.vBiases = append(n.vBiases, mat.NewDense(1, out, nil))
	}
	return n
}

// forward 批量前向传播
// 返回：各层的仿射输出（pre-activation）与激活输出，
// activations[0]为输入，activations[len(dims)-1]为最终估值
func (n *Network) forward(x *mat.Dense) (preacts, activations []*mat.Dense) {
	activations = append(activations, x)
	h := x
	for l := range n.weights {
		rows, _ := h.Dims()
		z := mat.NewDense(rows, n.dims[l+1], nil)
		z.Mul(h, n.weights[l])
		addRowVector(z, n.biases[l])
		preacts = append(preacts, z)
		if l+1 < len(n.weights) {
			a := mat.NewDense(rows, n.dims[l+1], nil)
			a.Apply(func(_, _ int, v float64) float64 { return math.Max(0, v) }, z)
			activations = append(activations, a)
			h = a
		} else {
			// 输出层为线性
			activations = append(activations, z)
		}
	}
	return preacts, activations
}

// Predict 单样本前向传播
// 功能：计算一个观测向量下每个动作的估值
func (n *Network) Predict(obs []float64) []float64 {
	if len(obs) != n.dims[0] {
		panic(fmt.Sprintf("network: observation dim %d, want %d", len(obs), n.dims[0]))
	}
	x := mat.NewDense(1, n.dims[0], obs)
	_, activations := n.forward(x)
	out := activations[len(activations)-1]
	q := make([]float64, n.dims[len(n.dims)-1])
	for i := range q {
		q[i] = out.At(0, i)
	}
	return q
}

// Step 执行一次小批量优化
// 功能：以均方误差把所采动作上的估值向目标回归，走一步Adam
// 参数：states-批量观测，actions-各样本所采动作，targets-各样本回归目标
// 返回：损失与是否实际应用了更新
// 算法说明：
// 1. 前向传播取各样本在所采动作上的估值q
// 2. loss = mean((q − target)²)；损失非有限时直接放弃本次更新
// 3. 反向传播只在所采动作位置注入梯度2(q−target)/B，
//    经两个ReLU隐层传回各层权重
// 4. Adam逐参数应用带偏差修正的自适应步长
func (n *Network) Step(states [][]float64, actions []int, targets []float64) (float64, bool) {
	b := len(states)
	flat := make([]float64, 0, b*n.dims[0])
	for _, s := range states {
		flat = append(flat, s...)
	}
	x := mat.NewDense(b, n.dims[0], flat)

	preacts, activations := n.forward(x)
	out := activations[len(activations)-1]

	outDim := n.dims[len(n.dims)-1]
	loss := 0.
	delta := mat.NewDense(b, outDim, nil)
	for i := 0; i < b; i++ {
		if actions[i] < 0 || actions[i] >= outDim {
			panic(fmt.Sprintf("network: action %d out of range [0, %d)", actions[i], outDim))
		}
		diff := out.At(i, actions[i]) - targets[i]
		loss += diff * diff
		delta.Set(i, actions[i], 2*diff/float64(b))
	}
	loss /= float64(b)
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return loss, false
	}

	// 反向传播
	gradWeights := make([]*mat.Dense, len(n.weights))
	gradBiases := make([]*mat.Dense, len(n.weights))
	for l := len(n.weights) - 1; l >= 0; l-- {
		gw := mat.NewDense(n.dims[l], n.dims[l+1], nil)
		gw.Mul(activations[l].T(), delta)
		gradWeights[l] = gw
		gradBiases[l] = columnSums(delta)
		if l > 0 {
			prev := mat.NewDense(b, n.dims[l], nil)
			prev.Mul(delta, n.weights[l].T())
			// ReLU导数
			prev.Apply(func(i, j int, v float64) float64 {
				if preacts[l-1].At(i, j) > 0 {
					return v
				}
				return 0
			}, prev)
			delta = prev
		}
	}

	n.step++
	for l := range n.weights {
		adamUpdate(n.weights[l], gradWeights[l], n.mWeights[l], n.vWeights[l], n.step)
		adamUpdate(n.biases[l], gradBiases[l], n.mBiases[l], n.vBiases[l], n.step)
	}
	return loss, true
}

// Clone 深拷贝网络（含优化器状态）
func (n *Network) Clone() *Network {
	c := &Network{dims: append([]int(nil), n.dims...), step: n.step}
	for l := range n.weights {
		c.weights = append(c.weights, mat.DenseCopyOf(n.weights[l]))
		c.biases = append(c.biases, mat.DenseCopyOf(n.biases[l]))
		c.mWeights = append(c.mWeights, mat.DenseCopyOf(n.mWeights[l]))
		c.vWeights = append(c.vWeights, mat.DenseCopyOf(n.vWeights[l]))
		c.mBiases = append(c.mBiases, mat.DenseCopyOf(n.mBiases[l]))
		c.vBiases = append(c.vBiases, mat.DenseCopyOf(n.vBiases[l]))
	}
	return c
}

// CopyFrom 参数硬拷贝
// 说明：用于目标网络同步，只拷贝权重与偏置（目标网络不参与优化）
func (n *Network) CopyFrom(o *Network) {
	for l := range n.weights {
		n.weights[l].Copy(o.weights[l])
		n.biases[l].Copy(o.biases[l])
	}
}

// networkState gob序列化用的参数快照
type networkState struct {
	Dims    []int
	Weights [][]float64
	Biases  [][]float64
}

// Save 将网络参数gob编码写入w
func (n *Network) Save(w io.Writer) error {
	state := networkState{Dims: append([]int(nil), n.dims...)}
	for l := range n.weights {
		state.Weights = append(state.Weights, append([]float64(nil), n.weights[l].RawMatrix().Data...))
		state.Biases = append(state.Biases, append([]float64(nil), n.biases[l].RawMatrix().Data...))
	}
	return gob.NewEncoder(w).Encode(state)
}

// Load 从r读取gob编码的网络参数
// 说明：结构不匹配时报错，优化器状态清零
func (n *Network) Load(r io.Reader) error {
	var state networkState
	if err := gob.NewDecoder(r).Decode(&state); err != nil {
		return err
	}
	if len(state.Dims) != len(n.dims) {
		return fmt.Errorf("network: dims %v, want %v", state.Dims, n.dims)
	}
	for l := range n.dims {
		if state.Dims[l] != n.dims[l] {
			return fmt.Errorf("network: dims %v, want %v", state.Dims, n.dims)
		}
	}
	for l := range n.weights {
		in, out := n.dims[l], n.dims[l+1]
		if len(state.Weights[l]) != in*out || len(state.Biases[l]) != out {
			return fmt.Errorf("network: layer %d parameter size mismatch", l)
		}
		n.weights[l].SetRawMatrix(mat.NewDense(in, out, state.Weights[l]).RawMatrix())
		n.biases[l].SetRawMatrix(mat.NewDense(1, out, state.Biases[l]).RawMatrix())
		n.mWeights[l].Zero()
		n.vWeights[l].Zero()
		n.mBiases[l].Zero()
		n.vBiases[l].Zero()
	}
	n.step = 0
	return nil
}

// addRowVector 将1×m的行向量加到每一行
func addRowVector(dst *mat.Dense, row *mat.Dense) {
	r, c := dst.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			dst.Set(i, j, dst.At(i, j)+row.At(0, j))
		}
	}
}

// columnSums 按列求和，返回1×m矩阵
func columnSums(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(1, c, nil)
	for j := 0; j < c; j++ {
		sum := 0.
		for i := 0; i < r; i++ {
			sum += m.At(i, j)
		}
		out.Set(0, j, sum)
	}
	return out
}

// adamUpdate 对单个参数矩阵应用一步Adam
func adamUpdate(param, grad, m, v *mat.Dense, step int) {
	r, c := param.Dims()
	bc1 := 1 - math.Pow(adamBeta1, float64(step))
	bc2 := 1 - math.Pow(adamBeta2, float64(step))
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			g := grad.At(i, j)
			mv := adamBeta1*m.At(i, j) + (1-adamBeta1)*g
			vv := adamBeta2*v.At(i, j) + (1-adamBeta2)*g*g
			m.Set(i, j, mv)
			v.Set(i, j, vv)
			param.Set(i, j, param.At(i, j)-learnRate*(mv/bc1)/(math.Sqrt(vv/bc2)+adamEps))
		}
	}
}
