// Package schan bridges plain Go channels and the slipstream
// stream contracts.
//
// [ChannelSource] pumps a receive channel into a sink,
// so channel-producing code can feed stream consumers such as
// the sreplay cache.
// [SinkChan] goes the other way, exposing a sink's deliveries
// as a channel a consumer can range over.
package schan
