// Package http exposes the booking services as a JSON REST API.
//
// Public endpoints:
//   - POST /auth/code: mails a verification code. Body: {"email"}.
//   - POST /auth/verify: exchanges a code for an access token. Body:
//     {"email","code"}. Response: {"token","expires_at","user"}.
//
// Every other endpoint requires "Authorization: Bearer <token>":
//   - GET /auth/me
//   - GET /rooms, GET /rooms/{id}, POST /rooms, PUT /rooms/{id}, DELETE /rooms/{id}
//   - POST /bookings, GET /bookings (admin), GET /bookings/mine,
//     GET /bookings/mine.ics, GET /bookings/{id}, PUT /bookings/{id} (admin),
//     POST /bookings/{id}/cancel, PUT /bookings/{id}/status (admin),
//     POST /bookings/{id}/checkin
//   - POST /bans (admin)
//   - GET /blacklist, DELETE /blacklist/{email}, POST /blacklist/sweep (admin)
//   - POST /reports, GET /reports (admin), PATCH /reports/{id}, DELETE /reports/{id}
//   - GET /users, PUT /users (admin), GET /users/{email}
//
// Request and response DTOs live alongside their handlers. Slot sets travel
// as integer arrays and dates as "YYYY-MM-DD".
package http
