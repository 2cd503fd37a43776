package treestate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// stateTTL 状态保留时长，到期自动回到全折叠
const stateTTL = 30 * 24 * time.Hour

// Store 把每个用户每个项目的树UI状态存到Redis
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func stateKey(userID, projectID string) string {
	return fmt.Sprintf("treestate:%s:%s", userID, projectID)
}

// Load 读取状态，没有记录时返回初始状态
func (st *Store) Load(ctx context.Context, userID, projectID string) (*State, error) {
	raw, err := st.rdb.Get(ctx, stateKey(userID, projectID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return NewState(), nil
		}
		return nil, fmt.Errorf("load tree state: %w", err)
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		// 坏数据直接丢弃，回到初始状态
		return NewState(), nil
	}
	if state.Nodes == nil {
		state.Nodes = map[string]bool{}
	}
	if state.Activities == nil {
		state.Activities = map[string]bool{}
	}
	if state.Tasks == nil {
		state.Tasks = map[string]bool{}
	}
	return &state, nil
}

// Save 写回状态并续期
func (st *Store) Save(ctx context.Context, userID, projectID string, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal tree state: %w", err)
	}
	if err := st.rdb.Set(ctx, stateKey(userID, projectID), raw, stateTTL).Err(); err != nil {
		return fmt.Errorf("save tree state: %w", err)
	}
	return nil
}

// Reset 清空状态（项目删除或用户主动重置）
func (st *Store) Reset(ctx context.Context, userID, projectID string) error {
	return st.rdb.Del(ctx, stateKey(userID, projectID)).Err()
}

// Mutate 读-改-写一个状态；并发下以最后写入为准，UI状态可以容忍
func (st *Store) Mutate(ctx context.Context, userID, projectID string, fn func(*State)) (*State, error) {
	state, err := st.Load(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	fn(state)
	if err := st.Save(ctx, userID, projectID, state); err != nil {
		return nil, err
	}
	return state, nil
}
