/*
Package native defines the native storage of a profile: a synchronous string key/value
area every context of the profile sees.

It is the always-available fallback of the store. The persistence engine may not have
answered yet when the first state is rendered; native storage has.

Implementations:
  - NewMemoryStorage: process local, for tests
  - filestore: one file per key in the profile directory, with a watcher that turns
    writes of other contexts into storage events
*/
package native
