// Package hub fans live build-log lines out to connected viewer sessions.
// Channels are keyed by deployment ID, created implicitly on the first
// subscribe and garbage-collected when the last subscriber leaves. The hub
// keeps no history: a session only sees lines published after it subscribed.
package hub

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/skydock-systems/skydock-stack/collector/internal/metrics"
)

const shardCount = 16

// Session is a connected viewer. Send must be safe for concurrent use; a
// failed send marks the session as broken but never aborts a broadcast.
type Session interface {
	// ID uniquely identifies the session among all connections.
	ID() string

	// Send delivers one log line to the viewer.
	Send(line string) error
}

// Hub is a sharded registry of deployment channels. Sharding by deployment ID
// keeps subscribe/publish contention on one deployment away from the others.
type Hub struct {
	shards [shardCount]shard
}

type shard struct {
	mu       sync.RWMutex
	channels map[string]map[string]Session
}

// New creates an empty hub.
func New() *Hub {
	h := &Hub{}
	for i := range h.shards {
		h.shards[i].channels = make(map[string]map[string]Session)
	}
	return h
}

func (h *Hub) shardFor(deploymentID string) *shard {
	hash := fnv.New32a()
	hash.Write([]byte(deploymentID))
	return &h.shards[hash.Sum32()%shardCount]
}

// Subscribe adds the session to the deployment's channel, creating the
// channel if needed, and acknowledges the subscription to that session only.
func (h *Hub) Subscribe(deploymentID string, s Session) {
	sh := h.shardFor(deploymentID)

	sh.mu.Lock()
	members, ok := sh.channels[deploymentID]
	if !ok {
		members = make(map[string]Session)
		sh.channels[deploymentID] = members
	}
	_, existed := members[s.ID()]
	members[s.ID()] = s
	sh.mu.Unlock()

	if !existed {
		metrics.Subscribers.Inc()
	}

	// Acknowledgement goes to the new subscriber, never broadcast.
	_ = s.Send(fmt.Sprintf("Subscribed to logs:%s", deploymentID))
}

// Unsubscribe removes the session from the deployment's channel and drops the
// channel once empty. Safe to call for sessions that never subscribed.
func (h *Hub) Unsubscribe(deploymentID, sessionID string) {
	sh := h.shardFor(deploymentID)

	sh.mu.Lock()
	members, ok := sh.channels[deploymentID]
	if ok {
		if _, present := members[sessionID]; present {
			delete(members, sessionID)
			metrics.Subscribers.Dec()
		}
		if len(members) == 0 {
			delete(sh.channels, deploymentID)
		}
	}
	sh.mu.Unlock()
}

// Publish delivers the line to every session currently subscribed to the
// deployment. Broadcast iterates a snapshot of the membership, so sessions
// joining or leaving mid-broadcast neither block nor break it. Returns the
// number of successful deliveries.
func (h *Hub) Publish(deploymentID, line string) int {
	sh := h.shardFor(deploymentID)

	sh.mu.RLock()
	members := sh.channels[deploymentID]
	snapshot := make([]Session, 0, len(members))
	for _, s := range members {
		snapshot = append(snapshot, s)
	}
	sh.mu.RUnlock()

	delivered := 0
	for _, s := range snapshot {
		if err := s.Send(line); err != nil {
			// Session is gone; its disconnect handler will unsubscribe it.
			continue
		}
		delivered++
	}

	if delivered > 0 {
		metrics.FanoutDeliveries.Add(float64(delivered))
	}
	return delivered
}

// SubscriberCount returns the number of sessions subscribed to a deployment.
func (h *Hub) SubscriberCount(deploymentID string) int {
	sh := h.shardFor(deploymentID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return len(sh.channels[deploymentID])
}

// ChannelCount returns the number of live channels across all shards.
func (h *Hub) ChannelCount() int {
	total := 0
	for i := range h.shards {
		sh := &h.shards[i]
		sh.mu.RLock()
		total += len(sh.channels)
		sh.mu.RUnlock()
	}
	return total
}
