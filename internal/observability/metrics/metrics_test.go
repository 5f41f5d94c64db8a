package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Enabled(t *testing.T) {
	Init(true, "mintfactory-test")
	Init(false, "ignored")

	require.True(t, Enabled())
	assert.Equal(t, "mintfactory-test", ServiceName())

	CollectionDeploy("56", "ERC721", "success", 12*time.Second)
	CollectionDeployStep("sign", "success")
	DeploymentRecord("56", "success")
	DeploymentRecord("56", "success")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `mintfactory_registry_records_total{chain="56",service="mintfactory-test",status="success"} 2`)
	assert.Contains(t, body, `mintfactory_collection_deploys_total{chain="56",result="success",service="mintfactory-test",standard="ERC721"} 1`)
	assert.Contains(t, body, `mintfactory_collection_deploy_steps_total{result="success",service="mintfactory-test",step="sign"} 1`)
	assert.True(t, strings.Contains(body, "mintfactory_collection_deploy_duration_seconds_bucket"))

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `mintfactory_registry_records_total{chain="56",service="mintfactory-test",status="success"} 2`)
}
