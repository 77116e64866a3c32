// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// codecNamespace 是当前项目所有 Prometheus 指标使用的命名空间。
	codecNamespace = "streamcodec"

	// 以下为当前使用的通用标签名。
	formatLabelName    = "format"
	mimeTypeLabelName  = "mime_type"
	statusLabelName    = "status"
	errorCodeLabelName = "error_code"

	StatusOK   = "ok"
	StatusFail = "fail"
)

var (
	// payloadSizeBuckets 为编码结果大小的桶划分，单位为字节。
	// 实际桶分布为：
	// [64 256 1024 4096 16384 65536 262144 1.048576e+06 4.194304e+06 1.6777216e+07]
	payloadSizeBuckets = prometheus.ExponentialBuckets(64, 4, 10)

	EncodeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: codecNamespace,
			Name:      "encode_total",
			Help:      "number of encode operations",
		}, []string{formatLabelName, mimeTypeLabelName, statusLabelName})

	EncodeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: codecNamespace,
			Name:      "encode_bytes",
			Help:      "size of encoded payloads in bytes",
			Buckets:   payloadSizeBuckets,
		}, []string{formatLabelName, mimeTypeLabelName})

	DecodeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: codecNamespace,
			Name:      "decode_total",
			Help:      "number of decode operations",
		}, []string{formatLabelName, mimeTypeLabelName, statusLabelName})

	DecodeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: codecNamespace,
			Name:      "decode_bytes",
			Help:      "size of decoded payloads in bytes",
			Buckets:   payloadSizeBuckets,
		}, []string{formatLabelName, mimeTypeLabelName})

	ErrorTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: codecNamespace,
			Name:      "error_total",
			Help:      "number of failed codec operations by error code",
		}, []string{formatLabelName, errorCodeLabelName})

	metricRegisterer prometheus.Registerer
)

// GetRegisterer 返回全局 Prometheus Registerer。
// 如果尚未通过 Register 显式设置，则返回 prometheus.DefaultRegisterer。
func GetRegisterer() prometheus.Registerer {
	if metricRegisterer == nil {
		return prometheus.DefaultRegisterer
	}
	return metricRegisterer
}

// Register 注册当前定义的所有指标。
// 通常应在 init 函数中调用。
func Register(r prometheus.Registerer) {
	r.MustRegister(EncodeTotal)
	r.MustRegister(EncodeBytes)
	r.MustRegister(DecodeTotal)
	r.MustRegister(DecodeBytes)
	r.MustRegister(ErrorTotal)
	metricRegisterer = r
}
