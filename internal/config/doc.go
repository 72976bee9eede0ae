// Package config loads the queryparams server configuration.
//
// Configuration is read from queryparams.json, queryparams.yaml or
// queryparams.yml. Unset fields fall back to defaults:
//
//	{
//	  "addr": "localhost:8501",
//	  "path": "/stream",
//	  "storeName": "query_params",
//	  "writeTimeout": "10s",
//	  "shutdownTimeout": "30s",
//	  "metricsNamespace": "queryparams",
//	  "logLevel": "info"
//	}
package config
