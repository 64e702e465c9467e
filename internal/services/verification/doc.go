/*
Package verification runs the identity verification job lifecycle.

A job is created by Submit, which writes a pending record for the user and
hands the images to Smile ID. The vendor outcome reaches the record through
two independent paths: the vendor calls HandleCallback, or a client calls
PollStatus. Both map the vendor result code with smileid.MapResultCode and
reconcile the same record by job id.

Reconciliations are conditional on the record version they read. When two of
them race, exactly one write lands and the other gets ErrConflict.

A callback for a job id that no longer resolves, or that belongs to another
user, is acknowledged without a write.

The first verified result with a confidence of at least ConfidenceThreshold
sets the profile verified flag and emails the user.

Error Handling:

  - ErrInvalidInput: missing or malformed request data (400)
  - ErrInvalidSignature: callback signature mismatch (401)
  - ErrNotFound: unknown job id when polling (404)
  - ErrConflict: record changed since it was read (409)
  - ErrVendor, ErrPersistence, ErrConfiguration: server side failures (500)
*/
package verification
