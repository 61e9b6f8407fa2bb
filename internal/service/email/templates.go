package email

const reservationConfirmationTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .header {
            background: #16a34a;
            color: white;
            padding: 24px;
            text-align: center;
            border-radius: 10px 10px 0 0;
        }
        .content {
            background: #ffffff;
            padding: 24px;
            border: 1px solid #e5e7eb;
            border-top: none;
        }
        .info-box {
            background: #f3f4f6;
            padding: 16px;
            border-radius: 6px;
            margin: 16px 0;
        }
        .footer {
            padding: 16px;
            text-align: center;
            font-size: 12px;
            color: #6b7280;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>Reservation Confirmed</h1>
    </div>
    <div class="content">
        <p>Your charging slot has been booked.</p>
        <div class="info-box">
            <p><strong>Reservation:</strong> {{.ReservationID}}</p>
            <p><strong>Charging unit:</strong> {{.UnitID}}</p>
            <p><strong>From:</strong> {{.StartTime}}</p>
            <p><strong>Until:</strong> {{.EndTime}}</p>
        </div>
        <p>Please arrive on time. The slot is released automatically when it expires.</p>
    </div>
    <div class="footer">
        <p>ChargeGrid &middot; This is an automated message, please do not reply.</p>
    </div>
</body>
</html>
`

const sessionReceiptTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .header {
            background: #2563eb;
            color: white;
            padding: 24px;
            text-align: center;
            border-radius: 10px 10px 0 0;
        }
        .content {
            background: #ffffff;
            padding: 24px;
            border: 1px solid #e5e7eb;
            border-top: none;
        }
        .info-box {
            background: #f3f4f6;
            padding: 16px;
            border-radius: 6px;
            margin: 16px 0;
        }
        .total {
            font-size: 20px;
            font-weight: bold;
            color: #2563eb;
        }
        .footer {
            padding: 16px;
            text-align: center;
            font-size: 12px;
            color: #6b7280;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>Charging Receipt</h1>
    </div>
    <div class="content">
        <p>Thanks for charging with ChargeGrid. Here is your session summary.</p>
        <div class="info-box">
            <p><strong>Session:</strong> {{.SessionID}}</p>
            <p><strong>Started:</strong> {{.StartTime}}</p>
            {{if .EndTime}}<p><strong>Finished:</strong> {{.EndTime}}</p>{{end}}
            {{if .EnergyKWh}}<p><strong>Energy delivered:</strong> {{.EnergyKWh}} kWh</p>{{end}}
            <p><strong>Price per kWh:</strong> {{.PricePerKWh}}</p>
            {{if .Cost}}<p class="total">Total: {{.Cost}}</p>{{end}}
        </div>
    </div>
    <div class="footer">
        <p>ChargeGrid &middot; This is an automated message, please do not reply.</p>
    </div>
</body>
</html>
`
