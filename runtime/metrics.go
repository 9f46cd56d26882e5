// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"
	"strconv"

	"github.com/firofarm/chef/builtin"
	"github.com/firofarm/chef/eventdb"
	"github.com/firofarm/chef/metrics"
)

var (
	metricCallCount    = metrics.LazyLoadCounterVec("runtime_call_count", []string{"op", "result"})
	metricCallDuration = metrics.LazyLoadHistogramVec("runtime_call_duration_ms", []string{"op"}, metrics.BucketCallMs)
	metricTotalStaked  = metrics.LazyLoadGaugeVec("chef_pool_total_staked", []string{"pool"})
	metricRewardAccrue = metrics.LazyLoadCounter("chef_reward_accrued")
)

// observe updates chef meters from the events of a committed call.
func (rt *Runtime) observe(events []*eventdb.Event) {
	pools := make(map[uint64]struct{})
	for _, ev := range events {
		if ev.Contract != builtin.Chef.Address {
			continue
		}
		switch ev.Name {
		case "PoolUpdated":
			if reward, ok := new(big.Int).SetString(ev.Args["reward"], 10); ok && reward.IsInt64() {
				metricRewardAccrue().Add(reward.Int64())
			}
		case "Deposit", "Withdraw", "EmergencyWithdraw":
			if pid, err := strconv.ParseUint(ev.Args["pid"], 10, 64); err == nil {
				pools[pid] = struct{}{}
			}
		}
	}
	for pid := range pools {
		p, err := rt.contracts.Chef.GetPool(pid)
		if err != nil || !p.TotalStaked.IsInt64() {
			continue
		}
		metricTotalStaked().SetWithLabel(p.TotalStaked.Int64(), map[string]string{"pool": strconv.FormatUint(pid, 10)})
	}
}
