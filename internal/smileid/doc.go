/*
Package smileid talks to the Smile ID identity verification API.

It owns everything vendor specific: request signing, job id generation,
the job-creation, job-status and web-token calls, callback signature checks and the
mapping from vendor result codes to internal verification statuses.

	signer := smileid.NewSigner(cfg.APIKey)
	client := smileid.NewClient(cfg)

	ts := time.Now().Unix()
	jobID := smileid.NewJobID(cfg.PartnerID, ts)
	sig, err := signer.SignTimestamp(ts)
	_, err = client.SubmitJob(ctx, job, ts, sig)

	st, err := client.GetJobStatus(ctx, jobID)
	status := smileid.MapResultCode(st.ResultCode)
*/
package smileid
