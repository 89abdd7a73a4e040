package trafficlight

import (
	"git.fiblab.net/general/common/v2/parallel"
	"github.com/tsinghua-fib-lab/optitraffic/entity"
	"github.com/tsinghua-fib-lab/optitraffic/entity/junction"
)

const (
	// targetSyncInterval 目标网络硬同步间隔（帧）
	targetSyncInterval = 100
)

// marlController 多智能体RL信控
// 功能：每个路口一个独立DQN智能体，各自选择信号灯状态并在线学习
// 说明：所有智能体共享同一个全局观测向量（集中观测、分散动作），
// 动作受最短/最长驻留时间约束
type marlController struct {
	ctx       entity.ITaskContext
	junctions []entity.IJunction
	agents    []*Agent

	timeInState []float64 // 各路口当前状态驻留时间
	prevAction  []int     // 各路口上一帧实现的动作
	minDuration float64   // 最短驻留时间（防抖）
	maxDuration float64   // 最长驻留时间（强制切换）

	tick int // 帧计数，用于目标网络同步
}

// newMARL 创建MARL信控
// 功能：为每个路口创建一个DQN智能体，观测维数为20×路口数
// 说明：各智能体以路口ID派生的种子独立初始化，保证结果可复现
func newMARL(ctx entity.ITaskContext, junctions []entity.IJunction) *marlController {
	cfg := ctx.RuntimeConfig()
	obsDim := junction.ObservationDim * len(junctions)
	c := &marlController{
		ctx:         ctx,
		junctions:   junctions,
		agents:      make([]*Agent, 0, len(junctions)),
		timeInState: make([]float64, len(junctions)),
		prevAction:  make([]int, len(junctions)),
		minDuration: cfg.All.Lights.MinDuration,
		maxDuration: cfg.All.Lights.MaxDuration,
	}
	for _, j := range junctions {
		c.agents = append(c.agents, NewAgent(j.ID(), obsDim, cfg.C.Seed+uint64(j.ID())))
	}
	return c
}

// globalObservation 构建全局观测向量
// 功能：按路口顺序拼接每个路口的20维特征块
// 说明：每帧构建一次，构建后只读，可安全地按引用共享给所有智能体
func (c *marlController) globalObservation() []float64 {
	obs := make([]float64, 0, junction.ObservationDim*len(c.junctions))
	for _, j := range c.junctions {
		obs = append(obs, j.Observation()...)
	}
	return obs
}

// selectAction 带驻留约束的动作选择
// 功能：对第idx个智能体做ε-greedy选择并施加驻留时间约束
// 算法说明：
// 1. 驻留时间不足min_duration时强制重复上一动作（防抖）
// 2. 驻留时间达到max_duration时强制切换：按价值排序取第一个
//    不同于上一动作的动作
// 3. 其余情况按ε-greedy选择
func (c *marlController) selectAction(idx int, obs []float64) int {
	proposed := c.agents[idx].SelectAction(obs)
	switch {
	case c.timeInState[idx] < c.minDuration:
		return c.prevAction[idx]
	case c.timeInState[idx] >= c.maxDuration:
		return c.agents[idx].BestActionExcluding(obs, c.prevAction[idx])
	default:
		return proposed
	}
}

// Update 推进MARL信控一帧
// 功能：联合选择并施加所有路口的动作，随后做经验存储与学习
// 参数：dt-时间步长
// 算法说明：
// 1. 施加动作前构建一次全局观测，所有智能体基于同一份前置观测选择动作
// 2. 全部动作同时施加到信号灯；实现动作与上一动作不同时，
//    该路口驻留时间清零
// 3. 施加后再构建一次全局观测作为转移的next_state——
//    奖励归因与学习目标必须反映联合动作之后的状态
// 4. 每个智能体计算奖励并存储转移(state, action, reward, next_state, done=false)，
//    然后各自执行一次学习步（经验不足一个小批量时为空操作）
// 5. 每targetSyncInterval帧将全部目标网络硬同步到在线网络
// 说明：学习步之间不共享可变状态，按智能体并行执行
func (c *marlController) Update(dt float64) {
	pre := c.globalObservation()

	actions := make([]int, len(c.junctions))
	for idx := range c.junctions {
		c.timeInState[idx] += dt
		actions[idx] = c.selectAction(idx, pre)
	}

	// 联合施加动作
	for idx, j := range c.junctions {
		j.SetLight(entity.StateOfAction(actions[idx]))
		if actions[idx] != c.prevAction[idx] {
			c.prevAction[idx] = actions[idx]
			c.timeInState[idx] = 0
		}
	}

	post := c.globalObservation()

	rewards := make([]float64, len(c.junctions))
	for idx, j := range c.junctions {
		rewards[idx] = j.Reward(entity.StateOfAction(actions[idx]))
		c.agents[idx].Store(Transition{
			State:     pre,
			Action:    actions[idx],
			Reward:    rewards[idx],
			NextState: post,
			Done:      false,
		})
	}

	losses := parallel.GoMap(c.agents, func(a *Agent) learnResult {
		loss, updated := a.Learn()
		return learnResult{loss: loss, updated: updated}
	})
	for idx := range c.agents {
		if losses[idx].updated {
			log.Debugf(
				"agent %d: action=%v time=%.2f reward=%.2f loss=%.4f epsilon=%.3f",
				c.junctions[idx].ID(), entity.StateOfAction(actions[idx]),
				c.timeInState[idx], rewards[idx], losses[idx].loss, c.agents[idx].Epsilon(),
			)
		} else {
			log.Debugf(
				"agent %d: action=%v time=%.2f reward=%.2f epsilon=%.3f",
				c.junctions[idx].ID(), entity.StateOfAction(actions[idx]),
				c.timeInState[idx], rewards[idx], c.agents[idx].Epsilon(),
			)
		}
	}

	c.tick++
	if c.tick%targetSyncInterval == 0 {
		for _, a := range c.agents {
			a.SyncTarget()
		}
	}
}

type learnResult struct {
	loss    float64
	updated bool
}
