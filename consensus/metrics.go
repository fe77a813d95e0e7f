// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import "github.com/aurumchain/aurum/metrics"

var (
	metricBlockConnectedCount   = metrics.LazyLoadCounter("block_connected_count")
	metricBlockRejectedCount    = metrics.LazyLoadCounterVec("block_rejected_count", []string{"reason"})
	metricBlockValidationMillis = metrics.LazyLoadHistogram("block_validation_duration_ms", metrics.Bucket10s)
)
