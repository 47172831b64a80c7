/*
   Copyright 2018-2019 Banco Bilbao Vizcaya Argentaria, S.A.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package metrics holds the prometheus collectors instrumented by the
// tree operations. Hosts embed them into their own registry through
// Register.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (

	// TREE

	CryptotreeAddTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cryptotree_add_total",
			Help: "The total number of successful insertions.",
		},
	)
	CryptotreeDuplicateAddTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cryptotree_duplicate_add_total",
			Help: "The total number of insertions rejected as duplicates.",
		},
	)
	CryptotreeSearchTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cryptotree_search_total",
			Help: "The total number of search queries.",
		},
	)
	CryptotreeMembershipTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cryptotree_membership_total",
			Help: "The total number of membership proof requests.",
		},
	)
	CryptotreeAddDurationSeconds = prometheus.NewSummary(
		prometheus.SummaryOpts{
			Name: "cryptotree_add_duration_seconds",
			Help: "Duration of the add operation.",
		},
	)
	CryptotreeIntegrityChecksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cryptotree_integrity_checks_total",
			Help: "The total number of full integrity verifications.",
		},
	)
	CryptotreeIntegrityFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cryptotree_integrity_failures_total",
			Help: "The total number of integrity verifications that found a mismatch.",
		},
	)
)

var collectors = []prometheus.Collector{
	CryptotreeAddTotal,
	CryptotreeDuplicateAddTotal,
	CryptotreeSearchTotal,
	CryptotreeMembershipTotal,
	CryptotreeAddDurationSeconds,
	CryptotreeIntegrityChecksTotal,
	CryptotreeIntegrityFailuresTotal,
}

// Register adds all the tree collectors to the given registerer.
func Register(r prometheus.Registerer) {
	for _, c := range collectors {
		r.MustRegister(c)
	}
}
