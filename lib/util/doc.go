/*
Package util contains small building blocks shared by the dKG packages.

  - Queue: lock-free multi-producer queue with a polling single consumer. Transport goroutines
    push requests, the rank loop drains them between its own work steps.
  - Stats, DistributionStats: summary statistics, used to judge how evenly vertices spread over bins.
  - CountHistogram: power of two histogram for small counts such as bin occupancy or coverage.
*/
package util
