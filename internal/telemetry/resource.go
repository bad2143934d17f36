// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023-2024 UnderNET

package telemetry

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// createResource describes the service, its runtime and deployment
func (p *Provider) createResource(ctx context.Context) (*resource.Resource, error) {
	attributes := []attribute.KeyValue{
		semconv.ServiceNameKey.String(p.config.ServiceName),
		semconv.ServiceVersionKey.String(p.config.ServiceVersion),
		semconv.ProcessRuntimeNameKey.String("go"),
		semconv.ProcessRuntimeVersionKey.String(runtime.Version()),
		semconv.DeploymentEnvironmentKey.String(detectEnvironment()),
	}

	attributes = append(attributes, kubernetesAttributes()...)
	attributes = append(attributes, configuredAttributes(p.config.ResourceAttributes)...)

	res, err := resource.New(ctx,
		resource.WithAttributes(attributes...),
		resource.WithFromEnv(),
		resource.WithHost(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	return res, nil
}

// detectEnvironment attempts to detect the deployment environment
func detectEnvironment() string {
	for _, key := range []string{"ENVIRONMENT", "ENV", "DEPLOYMENT_ENV"} {
		if env := os.Getenv(key); env != "" {
			return env
		}
	}

	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return "kubernetes"
	}

	if _, err := os.Stat("/.dockerenv"); err == nil {
		return "docker"
	}

	return "development"
}

// kubernetesAttributes reads the downward API variables when running in a pod
func kubernetesAttributes() []attribute.KeyValue {
	if os.Getenv("KUBERNETES_SERVICE_HOST") == "" {
		return nil
	}

	var attrs []attribute.KeyValue
	if podName := os.Getenv("HOSTNAME"); podName != "" {
		attrs = append(attrs, semconv.K8SPodNameKey.String(podName))
	}
	if namespace := os.Getenv("NAMESPACE"); namespace != "" {
		attrs = append(attrs, semconv.K8SNamespaceNameKey.String(namespace))
	}
	if nodeName := os.Getenv("NODE_NAME"); nodeName != "" {
		attrs = append(attrs, semconv.K8SNodeNameKey.String(nodeName))
	}
	return attrs
}

// configuredAttributes converts resource attributes from configuration in key order
func configuredAttributes(values map[string]string) []attribute.KeyValue {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	attrs := make([]attribute.KeyValue, 0, len(keys))
	for _, key := range keys {
		attrs = append(attrs, attribute.String(key, values[key]))
	}
	return attrs
}
