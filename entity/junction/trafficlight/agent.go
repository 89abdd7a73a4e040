package trafficlight

import (
	"io"
	"math"

	"github.com/tsinghua-fib-lab/optitraffic/entity"
	"github.com/tsinghua-fib-lab/optitraffic/utils/container"
	"github.com/tsinghua-fib-lab/optitraffic/utils/randengine"
)

// DQN超参数
const (
	replayCapacity = 10000 // 回放缓冲区容量
	batchSize      = 64    // 小批量大小，经验不足时不更新
	gamma          = 0.99  // 折扣因子
	epsilonInit    = 1.0   // 初始探索率
	epsilonMin     = 0.05  // 探索率下限
	epsilonDecay   = 1e-4  // 每次学习步的探索率衰减量
)

// Transition 一条经验转移记录
// 说明：State与NextState持有当帧构建的全局观测切片，
// 观测构建后只读，跨智能体共享引用是安全的
type Transition struct {
	State     []float64
	Action    int
	Reward    float64
	NextState []float64
	Done      bool
}

// Agent 单路口的DQN智能体
// 功能：动作价值估计（在线网络）+延迟目标网络+有界经验回放，
// ε-greedy探索并通过时序差分更新在线学习
type Agent struct {
	id int32

	net    *Network // 在线价值网络
	target *Network // 目标网络，只用于计算自举目标

	memory    *container.Ring[Transition]
	epsilon   float64
	generator *randengine.Engine
}

// NewAgent 创建DQN智能体
// 参数：id-智能体标识（与路口ID一致），obsDim-观测维数，seed-随机数种子
// 返回：初始化完成的智能体实例
// 说明：目标网络初始化为在线网络的副本
func NewAgent(id int32, obsDim int, seed uint64) *Agent {
	generator := randengine.New(seed)
	net := NewNetwork(obsDim, len(entity.ActionStates), generator)
	return &Agent{
		id:        id,
		net:       net,
		target:    net.Clone(),
		memory:    container.NewRing[Transition](replayCapacity),
		epsilon:   epsilonInit,
		generator: generator,
	}
}

// SelectAction ε-greedy动作选择
// 功能：以ε概率均匀随机探索，否则取在线网络估值最高的动作
func (a *Agent) SelectAction(obs []float64) int {
	if a.generator.PTrue(a.epsilon) {
		return a.generator.Intn(len(entity.ActionStates))
	}
	q := a.net.Predict(obs)
	best := 0
	for i := 1; i < len(q); i++ {
		if q[i] > q[best] {
			best = i
		}
	}
	return best
}

// BestActionExcluding 强制切换时的动作选择
// 功能：按估值从高到低排序，返回第一个不同于exclude的动作
// 说明：与最大压力信控选相位相同的做法，用优先队列按负价值
// 建小顶堆逐个弹出
func (a *Agent) BestActionExcluding(obs []float64, exclude int) int {
	q := a.net.Predict(obs)
	queue := container.NewPriorityQueue[int]()
	for i, v := range q {
		queue.Push(i, -v) // 小顶堆，价值越大越靠前
	}
	queue.Heapify()
	for queue.Len() > 0 {
		action, _ := queue.HeapPop()
		if action != exclude {
			return action
		}
	}
	return exclude
}

// Store 存入一条经验转移
// 说明：缓冲区有界，写满后先进先出淘汰最旧经验
func (a *Agent) Store(t Transition) {
	a.memory.Push(t)
}

// Learn 执行一次学习步
// 功能：从回放缓冲区均匀抽样一个小批量，做一次时序差分回归更新
// 返回：本次损失与是否实际发生了更新
// 算法说明：
// 1. 经验不足一个小批量（64条）时为空操作
// 2. 目标：reward + γ×max_a target(next_state)[a]（done时截断自举项）
// 3. 以均方误差将在线网络在所采动作上的估值向目标回归，走一步优化
// 4. 损失非有限时放弃本次更新，参数保持不变（这是优化过程的
//    瞬态性质，不应使仿真崩溃）
// 5. 更新成功后探索率衰减固定步长，下限0.05
func (a *Agent) Learn() (float64, bool) {
	if a.memory.Len() < batchSize {
		return 0, false
	}
	batch := a.memory.Sample(batchSize, a.generator)

	states := make([][]float64, batchSize)
	actions := make([]int, batchSize)
	targets := make([]float64, batchSize)
	for i, t := range batch {
		states[i] = t.State
		actions[i] = t.Action
		nextQ := a.target.Predict(t.NextState)
		maxNext := nextQ[0]
		for _, v := range nextQ[1:] {
			if v > maxNext {
				maxNext = v
			}
		}
		targets[i] = t.Reward
		if !t.Done {
			targets[i] += gamma * maxNext
		}
	}

	loss, ok := a.net.Step(states, actions, targets)
	if !ok {
		log.Warnf("agent %d: non-finite loss %f, skipping update", a.id, loss)
		return loss, false
	}
	a.epsilon = math.Max(epsilonMin, a.epsilon-epsilonDecay)
	return loss, true
}

// Epsilon 获取当前探索率
func (a *Agent) Epsilon() float64 {
	return a.epsilon
}

// MemoryLen 获取回放缓冲区的当前长度
func (a *Agent) MemoryLen() int {
	return a.memory.Len()
}

// SyncTarget 硬同步目标网络
// 说明：将在线网络参数整体拷贝到目标网络，不做滑动平均
func (a *Agent) SyncTarget() {
	a.target.CopyFrom(a.net)
}

// Save 保存在线网络参数
// 说明：跨进程的模型管理不在本引擎范围内，这里只提供钩子
func (a *Agent) Save(w io.Writer) error {
	return a.net.Save(w)
}

// Load 加载在线网络参数并重新同步目标网络
func (a *Agent) Load(r io.Reader) error {
	if err := a.net.Load(r); err != nil {
		return err
	}
	a.SyncTarget()
	return nil
}
