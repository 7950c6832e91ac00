package extinction

// CTIO wavelength-dependent extinction coefficients (mag/airmass),
// Stritzinger et al. 2005.
var ctioWavelength = []float64{
	3050, 3084.65, 3119.31, 3153.96, 3188.61, 3223.27, 3257.92, 3292.57,
	3327.23, 3361.88, 3396.54, 3431.19, 3465.84, 3500.5, 3535.15, 3569.8,
	3604.46, 3639.11, 3673.76, 3708.42, 3743.07, 3777.72, 3812.38, 3847.03,
	3881.69, 3916.34, 3950.99, 3985.65, 4020.3, 4054.95, 4089.61, 4124.26,
	4158.91, 4193.57, 4228.22, 4262.87, 4297.53, 4332.18, 4366.83, 4401.49,
	4436.14, 4470.79, 4505.45, 4540.1, 4574.76, 4609.41, 4644.06, 4678.72,
	4713.37, 4748.02, 4782.68, 4817.33, 4851.98, 4886.64, 4921.29, 4955.94,
	4990.6, 5025.25, 5059.91, 5094.56, 5129.21, 5163.87, 5198.52, 5233.17,
	5267.83, 5302.48, 5337.13, 5371.79, 5406.44, 5441.09, 5475.75, 5510.4,
	5545.05, 5579.71, 5614.36, 5649.02, 5683.67, 5718.32, 5752.98, 5787.63,
	5822.28, 5856.94, 5891.59, 5926.24, 5960.9, 5995.55, 6030.2, 6064.86,
	6099.51, 6134.17, 6168.82, 6203.47, 6238.13, 6272.78, 6307.43, 6342.09,
	6376.74, 6411.39, 6446.05, 6480.7, 6482.85, 6535.38, 6587.91, 6640.44,
	6692.96, 6745.49, 6798.02, 6850.55, 6903.07, 6955.6, 7008.13, 7060.65,
	7113.18, 7165.71, 7218.24, 7270.76, 7323.29, 7375.82, 7428.35, 7480.87,
	7533.4, 7585.93, 7638.45, 7690.98, 7743.51, 7796.04, 7848.56, 7901.09,
	7953.62, 8006.15, 8058.67, 8111.2, 8163.73, 8216.25, 8268.78, 8321.31,
	8373.84, 8426.36, 8478.89, 8531.42, 8583.95, 8636.47, 8689, 8741.53,
	8794.05, 8846.58, 8899.11, 8951.64, 9004.16, 9056.69, 9109.22, 9161.75,
	9214.27, 9266.8, 9319.33, 9371.85, 9424.38, 9476.91, 9529.44, 9581.96,
	9634.49, 9687.02, 9739.55, 9792.07, 9844.6, 9897.13, 9949.65, 10002.2,
	10054.7, 10107.2, 10159.8, 10212.3, 10264.8, 10317.3, 10369.9, 10422.4,
	10474.9, 10527.5, 10580, 10632.5, 10685, 10737.6, 10790.1, 10842.6,
	10895.1, 10947.7, 11000.2,
}

var ctioCoefficient = []float64{
	1.395, 1.283, 1.181, 1.088, 1.004, 0.929, 0.861, 0.801, 0.748, 0.7,
	0.659, 0.623, 0.591, 0.564, 0.54, 0.52, 0.502, 0.487, 0.473, 0.46,
	0.448, 0.436, 0.425, 0.414, 0.402, 0.391, 0.381, 0.37, 0.36, 0.349,
	0.339, 0.33, 0.321, 0.313, 0.304, 0.296, 0.289, 0.281, 0.274, 0.267,
	0.26, 0.254, 0.247, 0.241, 0.236, 0.23, 0.225, 0.22, 0.215, 0.21,
	0.206, 0.202, 0.198, 0.194, 0.19, 0.187, 0.184, 0.181, 0.178, 0.176,
	0.173, 0.171, 0.169, 0.167, 0.166, 0.164, 0.163, 0.162, 0.16, 0.159,
	0.158, 0.158, 0.157, 0.156, 0.155, 0.155, 0.154, 0.153, 0.153, 0.152,
	0.151, 0.151, 0.15, 0.149, 0.149, 0.148, 0.147, 0.146, 0.144, 0.143,
	0.142, 0.14, 0.138, 0.136, 0.134, 0.132, 0.129, 0.126, 0.123, 0.12,
	0.12, 0.115, 0.111, 0.107, 0.103, 0.099, 0.096, 0.092, 0.088, 0.085,
	0.082, 0.078, 0.075, 0.072, 0.069, 0.066, 0.064, 0.061, 0.058, 0.056,
	0.053, 0.051, 0.049, 0.047, 0.045, 0.043, 0.041, 0.039, 0.037, 0.035,
	0.034, 0.032, 0.03, 0.029, 0.028, 0.026, 0.025, 0.024, 0.023, 0.022,
	0.02, 0.019, 0.019, 0.018, 0.017, 0.016, 0.015, 0.015, 0.014, 0.013,
	0.013, 0.012, 0.011, 0.011, 0.011, 0.01, 0.01, 0.009, 0.009, 0.009,
	0.008, 0.008, 0.008, 0.007, 0.007, 0.007, 0.007, 0.007, 0.006, 0.006,
	0.006, 0.006, 0.006, 0.006, 0.005, 0.005, 0.005, 0.005, 0.005, 0.005,
	0.004, 0.004, 0.004, 0.004, 0.003, 0.003, 0.003,
}
