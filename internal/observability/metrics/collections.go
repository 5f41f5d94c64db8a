package metrics

import "time"

// CollectionDeploy records the outcome of one deployment.
func CollectionDeploy(chain, standard, result string, d time.Duration) {
	if !enabled {
		return
	}
	collectionDeployTotal.WithLabelValues(chain, standard, result).Inc()
	collectionDeployDuration.WithLabelValues(chain, result).Observe(d.Seconds())
}

// CollectionDeployStep records one pipeline step.
func CollectionDeployStep(step, result string) {
	if !enabled {
		return
	}
	collectionDeployStep.WithLabelValues(step, result).Inc()
}

// DeploymentRecord records a deployment record operation.
func DeploymentRecord(chain, status string) {
	if !enabled {
		return
	}
	deploymentRecordTotal.WithLabelValues(chain, status).Inc()
}
