// Package connectivity reports whether the rendering service is reachable.
//
// A Monitor keeps the last ConnectivityStatus and refreshes it on demand
// (Probe) or periodically (Start). Probes never retry and never return an
// error; the caller decides whether to continue while offline.
//
//	mon := connectivity.NewMonitor(client, settings.HealthURL(), 10*time.Second)
//	stop := mon.OnChange(func(s model.ConnectivityStatus) { /* redraw */ })
//	defer stop()
//
//	if err := mon.Start("@every 5m"); err != nil {
//	    return err
//	}
//	defer mon.Stop()
package connectivity
